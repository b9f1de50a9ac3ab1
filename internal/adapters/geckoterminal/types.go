package geckoterminal

import "github.com/shopspring/decimal"

// DTOs raw de la API de swaps. Solo se usan dentro de este paquete.
// La conversión a domain.Trade se hace en mapping.go.

// swapsResponse es una página de GET /{chain}/pools/{address}/swaps.
type swapsResponse struct {
	Data  []rawSwap `json:"data"`
	Links struct {
		Next string `json:"next"`
	} `json:"links"`
}

type rawSwap struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	Attributes    swapAttributes   `json:"attributes"`
	Relationships swapRelationship `json:"relationships"`
}

// swapAttributes: la API devuelve cantidades y precios como strings decimales.
type swapAttributes struct {
	Timestamp       string          `json:"timestamp"`
	TxHash          string          `json:"tx_hash"`
	TxFromAddress   string          `json:"tx_from_address"`
	FromTokenAmount decimal.Decimal `json:"from_token_amount"`
	ToTokenAmount   decimal.Decimal `json:"to_token_amount"`
	PriceFromInUSD  decimal.Decimal `json:"price_from_in_usd"`
	PriceToInUSD    decimal.Decimal `json:"price_to_in_usd"`
}

type swapRelationship struct {
	FromToken relationRef `json:"from_token"`
	ToToken   relationRef `json:"to_token"`
}

type relationRef struct {
	Data struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	} `json:"data"`
}
