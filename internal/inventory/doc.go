// Package inventory provides core.InventoryGateway implementations: a REST
// client for the inventory service, a direct Postgres reader, and a JSON file
// source for local runs and the command line tool.
package inventory
