package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stripe/stripe-go/v78"
)

const maxChainDepth = 8

// ErrorDump flattens an error chain into loggable fields, surfacing whatever
// the Postgres drivers or Stripe attached along the way.
type ErrorDump struct {
	TopMessage string         `json:"top_message"`
	Code       Code           `json:"code,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Chain      []string       `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`

	StripeCode        string `json:"stripe_code,omitempty"`
	StripeDeclineCode string `json:"stripe_decline_code,omitempty"`
	StripeRequestID   string `json:"stripe_request_id,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Details = te.Details()
	}
	for e := err; e != nil && len(d.Chain) < maxChainDepth; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	d.fillPostgres(err)
	d.fillStripe(err)
	return d
}

// Fields returns the populated dump entries keyed for structured logging.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	put := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	put("error_code", string(d.Code))
	put("pg_code", d.PGCode)
	put("pg_constraint", d.PGConstraint)
	put("pg_table", d.PGTable)
	put("pg_detail", d.PGDetail)
	put("stripe_code", d.StripeCode)
	put("stripe_decline_code", d.StripeDeclineCode)
	put("stripe_request_id", d.StripeRequestID)
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	return fields
}

func (d *ErrorDump) fillPostgres(err error) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGDetail = pgxErr.Detail
		return
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGDetail = pqErr.Detail
	}
}

func (d *ErrorDump) fillStripe(err error) {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return
	}
	d.StripeCode = string(stripeErr.Code)
	d.StripeDeclineCode = string(stripeErr.DeclineCode)
	d.StripeRequestID = stripeErr.RequestID
}
