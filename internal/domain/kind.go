package domain

// Kind - тег типа сущности, по которому фабрика выбирает движок хранения.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindAddress  Kind = "address"
	KindProduct  Kind = "product"
	KindOrder    Kind = "order"
	// KindShoppingCart объявлен, но движок для него не регистрируется.
	KindShoppingCart Kind = "shopping_cart"
)

// Имена операций контракта хранилища, попадают в ошибки и метрики.
const (
	OpCreate  = "create"
	OpRead    = "read"
	OpReadAll = "readAll"
	OpUpdate  = "update"
	OpDelete  = "delete"
)

func (k Kind) String() string {
	return string(k)
}

// Kinds возвращает все объявленные типы сущностей.
func Kinds() []Kind {
	return []Kind{KindCustomer, KindAddress, KindProduct, KindOrder, KindShoppingCart}
}
