package models

// Requests for the status HTTP endpoints.

type QuoteRequest struct {
	ID string `param:"id" json:"id" validate:"required"`
}

type SnapshotRequest struct {
	ID    string `param:"id" json:"id" validate:"required"`
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	Limit int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}
