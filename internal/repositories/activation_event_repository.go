package repositories

import (
	"database/sql"
	"fmt"

	"licgate/internal/models"
)

type ActivationEventRepository struct {
	DB *sql.DB
}

func NewActivationEventRepository(db *sql.DB) *ActivationEventRepository {
	return &ActivationEventRepository{DB: db}
}

// Create — строка журнала на каждую попытку, дошедшую до БД.
// codeID == nil для неизвестных кодов.
func (r *ActivationEventRepository) Create(codeID *int64, machineID, outcome string) (int64, error) {
	const q = `
		INSERT INTO activation_events (code_id, machine_id, outcome)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var codeArg sql.NullInt64
	if codeID != nil {
		codeArg = sql.NullInt64{Int64: *codeID, Valid: true}
	}
	var id int64
	if err := r.DB.QueryRow(q, codeArg, machineID, outcome).Scan(&id); err != nil {
		return 0, fmt.Errorf("activation_event create: %w", err)
	}
	return id, nil
}

func (r *ActivationEventRepository) ListByCodeID(codeID int64) ([]*models.ActivationEvent, error) {
	const q = `
		SELECT id, code_id, machine_id, outcome, created_at
		FROM activation_events
		WHERE code_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.DB.Query(q, codeID)
	if err != nil {
		return nil, fmt.Errorf("activation_event list: %w", err)
	}
	defer rows.Close()

	var out []*models.ActivationEvent
	for rows.Next() {
		var ev models.ActivationEvent
		var cid sql.NullInt64
		if err := rows.Scan(&ev.ID, &cid, &ev.MachineID, &ev.Outcome, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("activation_event scan: %w", err)
		}
		if cid.Valid {
			v := cid.Int64
			ev.CodeID = &v
		}
		out = append(out, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activation_event rows: %w", err)
	}
	return out, nil
}
