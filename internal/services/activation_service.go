package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"licgate/internal/models"
)

var (
	ErrCodeUnknown = errors.New("code unknown")
	ErrCodeBound   = errors.New("code bound to another machine")
)

// CodeStore — кусок репозитория кодов, нужный проверке.
type CodeStore interface {
	GetByCode(code string) (*models.LicenseCode, error)
	GetByID(id int64) (*models.LicenseCode, error)
	Activate(id int64, machineID string, usedAt time.Time) (bool, error)
}

// EventStore — журнал попыток активации.
type EventStore interface {
	Create(codeID *int64, machineID, outcome string) (int64, error)
}

// ConflictNotifier — уведомление оператора о попытке активации с чужой
// машины. Реализация обязана переживать nil-ресивер (см. TelegramService).
type ConflictNotifier interface {
	NotifyConflict(code, boundTo, attempted string)
}

type ActivationService struct {
	Codes    CodeStore
	Events   EventStore
	Notifier ConflictNotifier // может быть nil
}

func NewActivationService(codes CodeStore, events EventStore, notifier ConflictNotifier) *ActivationService {
	return &ActivationService{Codes: codes, Events: events, Notifier: notifier}
}

// Verify — решение по коду и машине. Возвращает activatedNow=true,
// если именно этот запрос перевёл код в использованные; false при
// идемпотентной повторной проверке. Отказы — сентинелы ErrCodeUnknown
// и ErrCodeBound, всё остальное — инфраструктурная ошибка.
//
// Переход unused→used атомарен на стороне БД (UPDATE с условием
// is_used=FALSE). Проигравший гонку запрос перечитывает запись и
// попадает в ветку уже использованного кода.
func (s *ActivationService) Verify(code, machineID string) (bool, error) {
	rec, err := s.Codes.GetByCode(code)
	if err != nil {
		return false, err
	}
	if rec == nil {
		s.audit(nil, machineID, models.OutcomeUnknown)
		return false, ErrCodeUnknown
	}

	if !rec.IsUsed {
		codeID := rec.ID
		won, err := s.Codes.Activate(codeID, machineID, time.Now())
		if err != nil {
			return false, err
		}
		if won {
			s.audit(&codeID, machineID, models.OutcomeActivated)
			log.Printf("[verify][activate] OK code_id=%d machine=%s", codeID, machineID)
			return true, nil
		}
		// UPDATE не зацепил строку — активацию успел провести
		// параллельный запрос. Перечитываем и решаем как по занятому коду.
		rec, err = s.Codes.GetByID(codeID)
		if err != nil {
			return false, err
		}
		if rec == nil || !rec.IsUsed {
			return false, fmt.Errorf("code %d: lost activation race but row is not used", codeID)
		}
	}

	if rec.MachineID != nil && *rec.MachineID == machineID {
		s.audit(&rec.ID, machineID, models.OutcomeReverified)
		log.Printf("[verify][repeat] OK code_id=%d machine=%s", rec.ID, machineID)
		return false, nil
	}

	s.audit(&rec.ID, machineID, models.OutcomeConflict)
	log.Printf("[verify][conflict] code_id=%d bound=%v attempted=%s", rec.ID, rec.MachineID, machineID)
	if s.Notifier != nil {
		bound := ""
		if rec.MachineID != nil {
			bound = *rec.MachineID
		}
		s.Notifier.NotifyConflict(rec.Code, bound, machineID)
	}
	return false, ErrCodeBound
}

// audit — журнал best-effort: сбой записи события не должен ломать
// ответ клиенту.
func (s *ActivationService) audit(codeID *int64, machineID, outcome string) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Create(codeID, machineID, outcome); err != nil {
		log.Printf("[verify][audit][err] outcome=%s: %v", outcome, err)
	}
}
