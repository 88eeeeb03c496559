package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MorseWayne/catalog_shop/internal/client"
)

// NewChatCommand 与搜索助手对话：带参数时发送一条消息，否则进入交互模式
func NewChatCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the shopping assistant",
		Long:  "Send one message when given as arguments, otherwise start an interactive session. Type exit or quit to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rootOpts.client()
			if err != nil {
				return err
			}
			session := client.NewChatSession(c)
			out := rootOpts.output(cmd)

			if len(args) > 0 {
				reply, err := session.Send(cmd.Context(), strings.Join(args, " "))
				if reply == nil {
					return err
				}
				return out.Reply(reply)
			}
			return chatLoop(cmd, session, out)
		},
	}
}

func chatLoop(cmd *cobra.Command, session *client.ChatSession, out *Output) error {
	in := bufio.NewScanner(cmd.InOrStdin())
	prompt := func() { fmt.Fprint(cmd.OutOrStdout(), "> ") }

	prompt()
	for in.Scan() {
		line := strings.TrimSpace(in.Text())
		switch line {
		case "":
			prompt()
			continue
		case "exit", "quit":
			return nil
		}

		// 上游失败时 reply 携带通用提示，会话继续
		reply, err := session.Send(cmd.Context(), line)
		if reply == nil {
			return err
		}
		if err := out.Reply(reply); err != nil {
			return err
		}
		prompt()
	}
	if err := in.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}
