// Package main is the entry point for the leverage service.
package main

import (
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/leverage/cmd"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true
	cmd.Execute()
}
