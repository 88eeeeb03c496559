package repo

import (
	"testing"

	"github.com/MorseWayne/catalog_shop/internal/database"
	"github.com/MorseWayne/catalog_shop/internal/database/dbtest"
)

// seedCatalog 构造测试目录：
// 分类 1 Dresses 共 8 件商品（color: Red×3, Blue×5），分类 2 Bags 1 件，分类 3 Shoes 无商品。
func seedCatalog(t *testing.T) *database.DB {
	t.Helper()
	db := dbtest.New(t)

	dbtest.Exec(t, db,
		`INSERT INTO categories (id, name) VALUES (1, 'Dresses'), (2, 'Bags'), (3, 'Shoes')`,
		`INSERT INTO attribute_master (attribute_id, name, data_type) VALUES
			(1, 'color', 'enum'), (2, 'rating', 'number'), (3, 'skin_friendly', 'boolean'), (4, 'fabric', 'string')`,
		`INSERT INTO category_attributes (category_id, attribute_id, is_filterable, display_order) VALUES
			(1, 1, 1, 1), (1, 2, 1, 2), (1, 3, 1, 3), (1, 4, 0, 4), (2, 1, 1, 1), (3, 2, 1, 1)`,
		`INSERT INTO products (product_id, title, brand, category_id, price, mrp, discount_percent, currency, stock_status) VALUES
			('D001', 'Floral Maxi',    'Acme',     1,  500, 1000, 50, 'INR', 'In Stock'),
			('D002', 'Linen Shift',    'acme co',  1,  800, NULL, NULL, 'INR', 'In Stock'),
			('D003', 'Silk Wrap',      'Zen%Wear', 1, 1500, 1500, NULL, 'INR', 'Low Stock'),
			('D004', 'Denim Pinafore', 'Bluebell', 1, 2000, 2500, 20, 'INR', 'In Stock'),
			('D005', 'Velvet Gown',    'Bluebell', 1, 2500, NULL, NULL, 'INR', 'In Stock'),
			('D006', 'Cotton Sundress','Zenith',   1,  800, NULL, NULL, 'INR', 'In Stock'),
			('D007', 'Jersey Tee Dress','Acme',    1,  300, NULL, NULL, 'INR', 'In Stock'),
			('D008', 'Satin Slip',     'Zenith',   1, 1200, NULL, NULL, 'INR', 'Out of Stock'),
			('B001', 'Tote',           'Acme',     2,  999, NULL, NULL, 'INR', 'In Stock')`,
		`INSERT INTO attribute_values (product_id, attribute_id, value_string, value_number, value_boolean) VALUES
			('D001', 1, 'Red', NULL, NULL), ('D001', 2, NULL, 4.5, NULL), ('D001', 3, NULL, NULL, 1), ('D001', 4, 'Cotton', NULL, NULL),
			('D002', 1, 'Red', NULL, NULL), ('D002', 2, NULL, 3.0, NULL), ('D002', 3, NULL, NULL, 0),
			('D003', 1, 'Red', NULL, NULL), ('D003', 2, NULL, 4.0, NULL),
			('D004', 1, 'Blue', NULL, NULL), ('D004', 2, NULL, 5.0, NULL), ('D004', 3, NULL, NULL, 1),
			('D005', 1, 'Blue', NULL, NULL), ('D005', 2, NULL, 2.0, NULL),
			('D006', 1, 'Blue', NULL, NULL),
			('D007', 1, 'Blue', NULL, NULL), ('D007', 2, NULL, 4.8, NULL),
			('D008', 1, 'Blue', NULL, NULL), ('D008', 2, NULL, 4.2, NULL),
			('B001', 1, 'red', NULL, NULL)`,
		`INSERT INTO product_images (product_id, image_url, is_primary, display_order) VALUES
			('D001', 'https://img.example/d001-back.jpg', 0, 1),
			('D001', 'https://img.example/d001-front.jpg', 1, 0),
			('D001', 'https://img.example/d001-side.jpg', 0, 0),
			('D002', 'https://img.example/d002.jpg', 1, 0)`,
	)
	return db
}
