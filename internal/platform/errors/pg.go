package errors

import (
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgCodes maps the SQLSTATEs the listing store can hit; class 08 is handled by prefix
var pgCodes = map[string]ErrorCode{
	"23505": ErrorCodeInvalidArgument, // unique_violation
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation
	"23502": ErrorCodeValidation,      // not_null_violation
	"23514": ErrorCodeValidation,      // check_violation
	"57014": ErrorCodeUnavailable,     // query_canceled
	"57P01": ErrorCodeUnavailable,     // admin_shutdown
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
	"40001": ErrorCodeUnavailable,     // serialization_failure
	"40P01": ErrorCodeUnavailable,     // deadlock_detected
}

// PostgresCode classifies err by SQLSTATE. Non-postgres errors are ErrorCodeDB
func PostgresCode(err error) ErrorCode {
	var pgErr *pgconn.PgError
	if !stderrs.As(err, &pgErr) {
		return ErrorCodeDB
	}
	if c, ok := pgCodes[pgErr.Code]; ok {
		return c
	}
	if strings.HasPrefix(pgErr.Code, "08") {
		return ErrorCodeUnavailable
	}
	return ErrorCodeDB
}

// FromPostgres wraps err with msg and its classified code; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, PostgresCode(err), msg)
}
