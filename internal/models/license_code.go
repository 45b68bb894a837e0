package models

import "time"

// LicenseCode — один слот активации. Код уникален; после первой
// успешной активации запись больше не меняется (is_used, machine_id,
// used_at проставляются одним атомарным UPDATE).
type LicenseCode struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	IsUsed    bool       `json:"is_used"`
	MachineID *string    `json:"machine_id,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
