package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// insertBatchSize bounds the rows per INSERT statement. Four parameters per
// row keeps a batch well under the 65535 bind parameter limit.
const insertBatchSize = 500

const (
	selectAliasesSQL = `SELECT id, main_name, alias_name, source FROM chemical_aliases ORDER BY main_name, alias_name`
	deleteAliasesSQL = `DELETE FROM chemical_aliases`
	insertAliasesSQL = `INSERT INTO chemical_aliases (id, main_name, alias_name, source) VALUES `
)

// AliasStore keeps the alias cache in the chemical_aliases table.
type AliasStore struct {
	conn   *Connection
	logger logging.Logger
}

// NewAliasStore returns a store over conn.
func NewAliasStore(conn *Connection, log logging.Logger) *AliasStore {
	return &AliasStore{conn: conn, logger: logging.OrNop(log).Named("alias_store")}
}

// LoadAll returns every cached row.
func (s *AliasStore) LoadAll(ctx context.Context) ([]chemical.ChemicalAlias, error) {
	rows, err := s.conn.DB().QueryContext(ctx, selectAliasesSQL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to query aliases")
	}
	defer rows.Close()

	var out []chemical.ChemicalAlias
	for rows.Next() {
		var (
			a   chemical.ChemicalAlias
			src string
		)
		if err := rows.Scan(&a.ID, &a.MainName, &a.AliasName, &src); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to scan alias row")
		}
		a.Source = chemical.AliasSource(src)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to iterate alias rows")
	}
	return out, nil
}

// ReplaceAll swaps the table contents for aliases in one transaction. Any
// failure rolls back and leaves the previous rows in place.
func (s *AliasStore) ReplaceAll(ctx context.Context, aliases []chemical.ChemicalAlias) error {
	tx, err := s.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, deleteAliasesSQL); err != nil {
		return errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to clear aliases")
	}

	for start := 0; start < len(aliases); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(aliases) {
			end = len(aliases)
		}
		query, args := buildInsert(aliases[start:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, errors.ErrCodeAliasStoreFailure, "failed to insert aliases %d-%d", start, end)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeAliasStoreFailure, "failed to commit aliases")
	}
	s.logger.Debug("Replaced alias rows", logging.Int("rows", len(aliases)))
	return nil
}

// Ping checks the underlying database.
func (s *AliasStore) Ping(ctx context.Context) error {
	return s.conn.HealthCheck(ctx)
}

// buildInsert renders one multi-row INSERT. Duplicate ids keep the first row.
func buildInsert(batch []chemical.ChemicalAlias) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(insertAliasesSQL)
	args := make([]interface{}, 0, len(batch)*4)
	for i, a := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, a.ID, a.MainName, a.AliasName, string(a.Source))
	}
	sb.WriteString(" ON CONFLICT (id) DO NOTHING")
	return sb.String(), args
}

var _ chemical.AliasStore = (*AliasStore)(nil)
