package models

import "time"

// Исходы попытки активации (пишутся в журнал activation_events).
const (
	OutcomeActivated  = "activated"  // первый успешный ввод кода
	OutcomeReverified = "reverified" // повтор с той же машины
	OutcomeConflict   = "conflict"   // код уже привязан к другой машине
	OutcomeUnknown    = "unknown"    // кода нет в базе
)

// ActivationEvent — строка журнала: кто и с каким исходом дергал /verify.
// CodeID NULL для неизвестных кодов.
type ActivationEvent struct {
	ID        int64     `json:"id"`
	CodeID    *int64    `json:"code_id,omitempty"`
	MachineID string    `json:"machine_id"`
	Outcome   string    `json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
}
