// Package main is the entry point for metersplit.
//
//	@title						Metersplit - Shared Electricity Billing
//	@version					1.0
//	@description				Splits a main electricity meter bill across tenant sub-meters with slab-based tariff pricing and loss reconciliation.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				Admin API key for mutating endpoints
package main

func main() {
	Execute()
}
