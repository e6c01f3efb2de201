package schema

const OrderRequestSchemaTextV1 = `{
	"type": "record",
	"namespace": "orders",
	"name": "order_request",
	"fields": [
		{"name": "customer", "type": {
			"type": "record",
			"name": "order_customer",
			"fields": [
				{"name": "name", "type": "string"},
				{"name": "email", "type": "string"},
				{"name": "address", "type": "string"}
			]
		}},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "order_item",
				"fields": [
					{"name": "product_id", "type": "string"},
					{"name": "product_name", "type": "string"},
					{"name": "quantity", "type": "int"},
					{"name": "price", "type": "double"}
				]
			}
		}},
		{"name": "total", "type": "double"}
	]
}`

const OrderResponseSchemaTextV1 = `{
	"type": "record",
	"namespace": "orders",
	"name": "order_response",
	"fields": [
		{"name": "success", "type": "boolean"},
		{"name": "order_id", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "error", "type": "string"}
	]
}`

type (
	OrderRequestV1 struct {
		Customer OrderCustomerV1 `avro:"customer"`
		Items    []OrderItemV1   `avro:"items"`
		Total    float64         `avro:"total"`
	}

	OrderCustomerV1 struct {
		Name    string `avro:"name"`
		Email   string `avro:"email"`
		Address string `avro:"address"`
	}

	OrderItemV1 struct {
		ProductID   string  `avro:"product_id"`
		ProductName string  `avro:"product_name"`
		Quantity    int     `avro:"quantity"`
		Price       float64 `avro:"price"`
	}
)

type OrderResponseV1 struct {
	Success bool   `avro:"success"`
	OrderID string `avro:"order_id"`
	Status  string `avro:"status"`
	Error   string `avro:"error"`
}
