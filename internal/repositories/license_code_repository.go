package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"licgate/internal/models"
)

type LicenseCodeRepository struct {
	DB *sql.DB
}

func NewLicenseCodeRepository(db *sql.DB) *LicenseCodeRepository {
	return &LicenseCodeRepository{DB: db}
}

func (r *LicenseCodeRepository) Create(code string) (*models.LicenseCode, error) {
	const q = `
		INSERT INTO license_codes (code, is_used)
		VALUES ($1, FALSE)
		RETURNING id, created_at
	`
	rec := &models.LicenseCode{Code: code}
	if err := r.DB.QueryRow(q, code).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("license_code create: %w", err)
	}
	return rec, nil
}

// GetByCode — поиск по точному значению кода. Отсутствие строки — не
// ошибка: возвращаем nil, nil (для хендлера это "код неизвестен").
func (r *LicenseCodeRepository) GetByCode(code string) (*models.LicenseCode, error) {
	const q = `
		SELECT id, code, is_used, machine_id, used_at, created_at
		FROM license_codes
		WHERE code = $1
	`
	return r.scanOne(r.DB.QueryRow(q, code), "by code")
}

func (r *LicenseCodeRepository) GetByID(id int64) (*models.LicenseCode, error) {
	const q = `
		SELECT id, code, is_used, machine_id, used_at, created_at
		FROM license_codes
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRow(q, id), "by id")
}

// Activate — атомарный переход unused→used. Условие is_used=FALSE
// закрывает гонку двух одновременных первых активаций: UPDATE выиграет
// ровно один запрос, проигравший получит false и перечитает запись.
func (r *LicenseCodeRepository) Activate(id int64, machineID string, usedAt time.Time) (bool, error) {
	const q = `
		UPDATE license_codes
		SET is_used = TRUE, machine_id = $2, used_at = $3
		WHERE id = $1 AND is_used = FALSE
	`
	res, err := r.DB.Exec(q, id, machineID, usedAt)
	if err != nil {
		return false, fmt.Errorf("license_code activate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("license_code activate rows: %w", err)
	}
	return n == 1, nil
}

// List — used=nil вернёт все записи, иначе фильтр по is_used.
func (r *LicenseCodeRepository) List(used *bool, limit, offset int) ([]*models.LicenseCode, error) {
	const q = `
		SELECT id, code, is_used, machine_id, used_at, created_at
		FROM license_codes
		WHERE ($1::BOOLEAN IS NULL OR is_used = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	var usedArg sql.NullBool
	if used != nil {
		usedArg = sql.NullBool{Bool: *used, Valid: true}
	}
	rows, err := r.DB.Query(q, usedArg, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("license_code list: %w", err)
	}
	defer rows.Close()

	var out []*models.LicenseCode
	for rows.Next() {
		rec, err := scanCode(rows)
		if err != nil {
			return nil, fmt.Errorf("license_code list scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("license_code list rows: %w", err)
	}
	return out, nil
}

// Delete — удаляем только неиспользованные коды; использованная запись
// неизменяема. false = код уже активирован либо не существует.
func (r *LicenseCodeRepository) Delete(id int64) (bool, error) {
	res, err := r.DB.Exec(`DELETE FROM license_codes WHERE id = $1 AND is_used = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("license_code delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("license_code delete rows: %w", err)
	}
	return n == 1, nil
}

func (r *LicenseCodeRepository) CountByUsed(used bool) (int, error) {
	var c int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM license_codes WHERE is_used = $1`, used).Scan(&c); err != nil {
		return 0, fmt.Errorf("license_code count: %w", err)
	}
	return c, nil
}

func (r *LicenseCodeRepository) CountActivatedSince(since time.Time) (int, error) {
	var c int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM license_codes WHERE used_at >= $1`, since).Scan(&c); err != nil {
		return 0, fmt.Errorf("license_code count since: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCode(s rowScanner) (*models.LicenseCode, error) {
	var rec models.LicenseCode
	var machineID sql.NullString
	var usedAt sql.NullTime
	if err := s.Scan(&rec.ID, &rec.Code, &rec.IsUsed, &machineID, &usedAt, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if machineID.Valid {
		rec.MachineID = &machineID.String
	}
	if usedAt.Valid {
		t := usedAt.Time
		rec.UsedAt = &t
	}
	return &rec, nil
}

func (r *LicenseCodeRepository) scanOne(row *sql.Row, tag string) (*models.LicenseCode, error) {
	rec, err := scanCode(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("license_code %s: %w", tag, err)
	}
	return rec, nil
}
