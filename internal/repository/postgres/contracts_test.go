package postgres

import (
	accountdomain "github.com/creditedge/backend/internal/domain/account"
	applicationdomain "github.com/creditedge/backend/internal/domain/application"
	clientdomain "github.com/creditedge/backend/internal/domain/client"
	productdomain "github.com/creditedge/backend/internal/domain/product"
)

var (
	_ clientdomain.Repository      = (*ClientRepository)(nil)
	_ productdomain.Repository     = (*ProductRepository)(nil)
	_ applicationdomain.Repository = (*ApplicationRepository)(nil)
	_ accountdomain.Repository     = (*AccountRepository)(nil)
)
