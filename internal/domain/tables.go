package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	// Catalog
	&Category{},
	&Product{},
	&Banner{},
	// Customers
	&Customer{},
	&ChatMessage{},
	// Ledger
	&Order{},
	&OrderItem{},
	&Withdrawal{},
}
