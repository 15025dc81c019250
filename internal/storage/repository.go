package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kharcha/internal/core"
	"kharcha/internal/report"

	_ "modernc.org/sqlite"
)

// Sync states for the accountant-ledger pipeline.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateUser = errors.New("username already taken")
)

// User is a stored account. The password never leaves the database as
// anything but a bcrypt hash.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Admin        bool
}

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string, admin bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, ?)`,
		username, passwordHash, boolToInt(admin))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateUser, username)
		}
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "username", username, "admin", admin)
	return nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, username string) (User, error) {
	var (
		u     User
		admin int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, is_admin FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &admin)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, fmt.Errorf("get user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", username, err)
	}
	u.Admin = admin != 0
	return u, nil
}

// --- drivers ---

func (r *SQLiteRepository) CreateDriver(ctx context.Context, d core.Driver) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drivers (driver_id, name) VALUES (?, ?)
		 ON CONFLICT(driver_id) DO UPDATE SET name = excluded.name`,
		d.DriverID, d.Name)
	if err != nil {
		return fmt.Errorf("create driver: %w", err)
	}

	slog.InfoContext(ctx, "Driver saved", "driver_id", d.DriverID, "name", d.Name)
	return nil
}

func (r *SQLiteRepository) ListDrivers(ctx context.Context) ([]core.Driver, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT driver_id, name FROM drivers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []core.Driver
	for rows.Next() {
		var d core.Driver
		if err := rows.Scan(&d.DriverID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drivers: %w", err)
	}
	return drivers, nil
}

// DeleteDriver removes a driver. Records that referenced it keep their data
// with the driver reference cleared, per the ON DELETE SET NULL constraint.
func (r *SQLiteRepository) DeleteDriver(ctx context.Context, driverID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM drivers WHERE driver_id = ?`, driverID)
	if err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete driver rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete driver %s: %w", driverID, ErrNotFound)
	}

	slog.InfoContext(ctx, "Driver deleted", "driver_id", driverID)
	return nil
}

// --- records ---

func (r *SQLiteRepository) CreateRecord(ctx context.Context, rec core.ExpenseRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO records (
			owner, date, bill_date, vehicle_number, vehicle_type,
			maintenance_paisa, fuel_paisa, total_paisa, distance_km,
			driver_id, paid_to, bill_number, reason, sync_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Owner,
		rec.Date.Format(dateLayout),
		nullDate(rec.BillDate),
		rec.VehicleNumber,
		string(rec.VehicleType),
		rec.Maintenance.Paisa,
		rec.Fuel.Paisa,
		rec.Total.Paisa,
		rec.DistanceKM,
		nullString(rec.DriverID),
		rec.PaidTo,
		rec.BillNumber,
		rec.Reason,
		SyncPending,
	)
	if err != nil {
		return 0, fmt.Errorf("create record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record insert id: %w", err)
	}

	slog.InfoContext(ctx, "Record saved",
		"id", id,
		"owner", rec.Owner,
		"vehicle_number", rec.VehicleNumber,
		"total_paisa", rec.Total.Paisa)

	return id, nil
}

// UpdateRecord rewrites every mutable field and re-queues the record for
// ledger sync.
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, rec core.ExpenseRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records SET
			date = ?, bill_date = ?, vehicle_number = ?, vehicle_type = ?,
			maintenance_paisa = ?, fuel_paisa = ?, total_paisa = ?, distance_km = ?,
			driver_id = ?, paid_to = ?, bill_number = ?, reason = ?,
			sync_status = ?, synced_at = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		rec.Date.Format(dateLayout),
		nullDate(rec.BillDate),
		rec.VehicleNumber,
		string(rec.VehicleType),
		rec.Maintenance.Paisa,
		rec.Fuel.Paisa,
		rec.Total.Paisa,
		rec.DistanceKM,
		nullString(rec.DriverID),
		rec.PaidTo,
		rec.BillNumber,
		rec.Reason,
		SyncPending,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update record %d: %w", rec.ID, ErrNotFound)
	}

	slog.InfoContext(ctx, "Record updated", "id", rec.ID)
	return nil
}

const recordColumns = `
	r.id, r.owner, r.date, r.bill_date, r.vehicle_number, r.vehicle_type,
	r.maintenance_paisa, r.fuel_paisa, r.total_paisa, r.distance_km,
	r.driver_id, COALESCE(d.name, ''), r.paid_to, r.bill_number, r.reason`

func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (core.ExpenseRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+`
		 FROM records r LEFT JOIN drivers d ON r.driver_id = d.driver_id
		 WHERE r.id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, fmt.Errorf("get record %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return rec, nil
}

// ListRecords implements report.Store. Date bounds are inclusive, the driver
// filter is exact, the vehicle filter is case-insensitive.
func (r *SQLiteRepository) ListRecords(ctx context.Context, q report.Query) ([]core.ExpenseRecord, error) {
	query := `SELECT ` + recordColumns + `
		 FROM records r LEFT JOIN drivers d ON r.driver_id = d.driver_id
		 WHERE 1=1`
	var args []any

	if q.Owner != "" {
		query += ` AND r.owner = ?`
		args = append(args, q.Owner)
	}
	if !q.Range.From.IsZero() {
		query += ` AND r.date >= ?`
		args = append(args, q.Range.From.Format(dateLayout))
	}
	if !q.Range.To.IsZero() {
		query += ` AND r.date <= ?`
		args = append(args, q.Range.To.Format(dateLayout))
	}
	if q.DriverID != "" {
		query += ` AND r.driver_id = ?`
		args = append(args, q.DriverID)
	}
	if q.VehicleNumber != "" {
		query += ` AND r.vehicle_number = ? COLLATE NOCASE`
		args = append(args, q.VehicleNumber)
	}
	query += ` ORDER BY r.date DESC, r.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// --- ledger sync queue ---

func (r *SQLiteRepository) GetPendingSyncRecords(ctx context.Context, limit int) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+`
		 FROM records r LEFT JOIN drivers d ON r.driver_id = d.driver_id
		 WHERE r.sync_status = ?
		 ORDER BY r.id ASC
		 LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	defer rows.Close()

	var records []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending records: %w", err)
	}
	return records, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE records SET sync_status = ?, synced_at = CURRENT_TIMESTAMP WHERE id = ?`,
		SyncDone, id)
	if err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}

	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE records SET sync_status = ? WHERE id = ?`,
		SyncError, id)
	if err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}

	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.ExpenseRecord, error) {
	var (
		rec      core.ExpenseRecord
		date     string
		billDate sql.NullString
		vtype    string
		driverID sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.Owner, &date, &billDate, &rec.VehicleNumber, &vtype,
		&rec.Maintenance.Paisa, &rec.Fuel.Paisa, &rec.Total.Paisa, &rec.DistanceKM,
		&driverID, &rec.DriverName, &rec.PaidTo, &rec.BillNumber, &rec.Reason,
	)
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	rec.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("parse stored date %q: %w", date, err)
	}
	if billDate.Valid && billDate.String != "" {
		rec.BillDate, err = time.Parse(dateLayout, billDate.String)
		if err != nil {
			return core.ExpenseRecord{}, fmt.Errorf("parse stored bill date %q: %w", billDate.String, err)
		}
	}
	rec.VehicleType = core.VehicleType(vtype)
	rec.DriverID = driverID.String
	return rec, nil
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateLayout)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
