package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store on a single SQLite file. Timestamps are stored
// as RFC3339 UTC text, amounts as integer cents.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// migrateSchema brings the ledger schema up to date from the embedded SQL
// files. It opens its own short-lived connection so a failed migration never
// poisons the store's pool.
func migrateSchema(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("embedded source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// sqliteTimeLayout always renders nine fractional digits and UTC, so the
// stored text compares in time order. RFC3339Nano trims trailing zeros,
// which makes "…59Z" sort after "…59.999999999Z" and breaks range filters.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func decodeTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// transactionWhere renders the filter as a WHERE clause plus args, mirroring
// TransactionFilter.matches.
func transactionWhere(f TransactionFilter) (string, []any) {
	var clauses []string
	var args []any
	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, f.Category)
	}
	if f.Account != "" {
		clauses = append(clauses, "(from_account = ? OR to_account = ?)")
		args = append(args, f.Account, f.Account)
	}
	if !f.Start.IsZero() {
		clauses = append(clauses, "date >= ?")
		args = append(args, encodeTime(f.Start))
	}
	if !f.End.IsZero() {
		clauses = append(clauses, "date <= ?")
		args = append(args, encodeTime(core.EndOfDay(f.End)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	query := `
		INSERT INTO transactions (date, type, amount_cents, category, description, from_account, to_account)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		encodeTime(t.Date), string(t.Type), t.Amount.Cents, t.Category,
		t.Description, t.FromAccount, t.ToAccount,
	).Scan(&t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)

	return t, nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	query := `
		SELECT id, date, type, amount_cents, category, description, from_account, to_account
		FROM transactions WHERE id = ?
	`
	t, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	query := `
		UPDATE transactions
		SET date = ?, type = ?, amount_cents = ?, category = ?, description = ?, from_account = ?, to_account = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		encodeTime(t.Date), string(t.Type), t.Amount.Cents, t.Category,
		t.Description, t.FromAccount, t.ToAccount, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	where, args := transactionWhere(f)
	limit := f.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	query := `
		SELECT id, date, type, amount_cents, category, description, from_account, to_account
		FROM transactions` + where + `
		ORDER BY date DESC, id DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountTransactions(ctx context.Context, f TransactionFilter) (int64, error) {
	where, args := transactionWhere(f)
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t       core.Transaction
		date    string
		typ     string
		cents   int64
	)
	if err := row.Scan(&t.ID, &date, &typ, &cents, &t.Category, &t.Description, &t.FromAccount, &t.ToAccount); err != nil {
		return core.Transaction{}, err
	}
	t.Date = decodeTime(date)
	t.Type = core.TransactionType(typ)
	t.Amount = core.Money{Cents: cents}
	return t, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO accounts (name) VALUES (?) RETURNING id`, a.Name).Scan(&a.ID)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) EnsureAccount(ctx context.Context, name string) (core.Account, error) {
	// Upserting against its own name makes the insert return a row whether
	// or not the account already existed.
	query := `
		INSERT INTO accounts (name) VALUES (?)
		ON CONFLICT(name) DO UPDATE SET name = excluded.name
		RETURNING id, name
	`
	var a core.Account
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&a.ID, &a.Name); err != nil {
		return core.Account{}, fmt.Errorf("ensure account: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	var a core.Account
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM accounts WHERE id = ?`, id).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var a core.Account
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteAccount(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, type) VALUES (?, ?) RETURNING id`,
		c.Name, string(c.Type)).Scan(&c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var (
		c   core.Category
		typ string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, name, type FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Type = core.TransactionType(typ)
	return c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type FROM categories ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c   core.Category
			typ string
		)
		if err := rows.Scan(&c.ID, &c.Name, &typ); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	query := `
		INSERT INTO recurring_transactions (day_of_month, type, amount_cents, category, description, from_account, to_account, last_processed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		rt.DayOfMonth, string(rt.Type), rt.Amount.Cents, rt.Category,
		rt.Description, rt.FromAccount, rt.ToAccount, encodeNullableTime(rt.LastProcessed),
	).Scan(&rt.ID)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("insert recurring transaction: %w", err)
	}
	return rt, nil
}

func (s *SQLiteStore) GetRecurring(ctx context.Context, id int64) (core.RecurringTransaction, error) {
	query := `
		SELECT id, day_of_month, type, amount_cents, category, description, from_account, to_account, last_processed
		FROM recurring_transactions WHERE id = ?
	`
	rt, err := scanRecurring(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringTransaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("get recurring transaction: %w", err)
	}
	return rt, nil
}

func (s *SQLiteStore) UpdateRecurring(ctx context.Context, rt core.RecurringTransaction) error {
	query := `
		UPDATE recurring_transactions
		SET day_of_month = ?, type = ?, amount_cents = ?, category = ?, description = ?, from_account = ?, to_account = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		rt.DayOfMonth, string(rt.Type), rt.Amount.Cents, rt.Category,
		rt.Description, rt.FromAccount, rt.ToAccount, rt.ID)
	if err != nil {
		return fmt.Errorf("update recurring transaction: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) DeleteRecurring(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) ListRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	query := `
		SELECT id, day_of_month, type, amount_cents, category, description, from_account, to_account, last_processed
		FROM recurring_transactions ORDER BY day_of_month, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SetRecurringLastProcessed(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET last_processed = ? WHERE id = ?`,
		encodeTime(at), id)
	if err != nil {
		return fmt.Errorf("set recurring last processed: %w", err)
	}
	return requireAffected(res)
}

func scanRecurring(row rowScanner) (core.RecurringTransaction, error) {
	var (
		rt    core.RecurringTransaction
		typ   string
		cents int64
		last  string
	)
	if err := row.Scan(&rt.ID, &rt.DayOfMonth, &typ, &cents, &rt.Category,
		&rt.Description, &rt.FromAccount, &rt.ToAccount, &last); err != nil {
		return core.RecurringTransaction{}, err
	}
	rt.Type = core.TransactionType(typ)
	rt.Amount = core.Money{Cents: cents}
	rt.LastProcessed = decodeTime(last)
	return rt, nil
}

func encodeNullableTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return encodeTime(t)
}

func (s *SQLiteStore) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	query := `
		INSERT INTO budgets (category, limit_cents) VALUES (?, ?)
		ON CONFLICT(category) DO UPDATE SET limit_cents = excluded.limit_cents
		RETURNING id, category, limit_cents
	`
	var cents int64
	err := s.db.QueryRowContext(ctx, query, b.Category, b.Limit.Cents).
		Scan(&b.ID, &b.Category, &cents)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	b.Limit = core.Money{Cents: cents}
	return b, nil
}

func (s *SQLiteStore) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, category, limit_cents FROM budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b     core.Budget
			cents int64
		)
		if err := rows.Scan(&b.ID, &b.Category, &cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Limit = core.Money{Cents: cents}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteBudget(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) UpsertNetWorthSnapshot(ctx context.Context, day time.Time, value core.Money) (core.NetWorthSnapshot, error) {
	query := `
		INSERT INTO net_worth_history (day, value_cents) VALUES (?, ?)
		ON CONFLICT(day) DO UPDATE SET value_cents = excluded.value_cents
		RETURNING id, day, value_cents
	`
	var (
		snap    core.NetWorthSnapshot
		dayText string
		cents   int64
	)
	err := s.db.QueryRowContext(ctx, query, core.DayKey(day), value.Cents).
		Scan(&snap.ID, &dayText, &cents)
	if err != nil {
		return core.NetWorthSnapshot{}, fmt.Errorf("upsert net worth snapshot: %w", err)
	}
	snap.Day, _ = time.Parse(core.DayLayout, dayText)
	snap.Value = core.Money{Cents: cents}

	slog.DebugContext(ctx, "Net worth snapshot stored", "day", dayText, "value_cents", cents)
	return snap, nil
}

func (s *SQLiteStore) ListNetWorthHistory(ctx context.Context, start, end time.Time) ([]core.NetWorthPoint, error) {
	var clauses []string
	var args []any
	if !start.IsZero() {
		clauses = append(clauses, "day >= ?")
		args = append(args, core.DayKey(start))
	}
	if !end.IsZero() {
		clauses = append(clauses, "day <= ?")
		args = append(args, core.DayKey(end))
	}
	query := `SELECT day, value_cents FROM net_worth_history`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY day"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list net worth history: %w", err)
	}
	defer rows.Close()

	var out []core.NetWorthPoint
	for rows.Next() {
		var (
			dayText string
			cents   int64
		)
		if err := rows.Scan(&dayText, &cents); err != nil {
			return nil, fmt.Errorf("scan net worth point: %w", err)
		}
		day, _ := time.Parse(core.DayLayout, dayText)
		out = append(out, core.NetWorthPoint{Day: day, Value: core.Money{Cents: cents}})
	}
	return out, rows.Err()
}
