// Package blocks contiene los DTOs de las rutas públicas del bloque.
package blocks

import "github.com/dropDatabas3/multilogin/internal/resolver"

// LoginMethodsResponse es la vista JSON de #login_methods.
type LoginMethodsResponse struct {
	BlockID string                 `json:"block_id"`
	Locale  string                 `json:"locale"`
	Active  int                    `json:"active"`
	Methods []resolver.LoginMethod `json:"methods"`
}
