package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"licgate/internal/models"
	"licgate/internal/utils"
)

var (
	ErrLicenseNotFound = errors.New("license not found")
	ErrLicenseUsed     = errors.New("license already activated")
)

const (
	maxBatchSize     = 500
	defaultListLimit = 50
	maxListLimit     = 200
)

// LicenseStore — админская часть репозитория кодов.
type LicenseStore interface {
	Create(code string) (*models.LicenseCode, error)
	GetByID(id int64) (*models.LicenseCode, error)
	List(used *bool, limit, offset int) ([]*models.LicenseCode, error)
	Delete(id int64) (bool, error)
	CountByUsed(used bool) (int, error)
	CountActivatedSince(since time.Time) (int, error)
}

// EventLog — чтение журнала активаций по коду.
type EventLog interface {
	ListByCodeID(codeID int64) ([]*models.ActivationEvent, error)
}

type LicenseService struct {
	Repo   LicenseStore
	Events EventLog
	Email  EmailService // может быть nil, тогда письма не шлём
}

func NewLicenseService(repo LicenseStore, events EventLog, email EmailService) *LicenseService {
	return &LicenseService{Repo: repo, Events: events, Email: email}
}

type Stats struct {
	Total    int `json:"total"`
	Used     int `json:"used"`
	Unused   int `json:"unused"`
	UsedLast int `json:"activated_last_24h"`
}

// Issue — выпускает count новых кодов. Если задан notifyEmail —
// отправляем список письмом; сбой почты выпуск не откатывает.
func (s *LicenseService) Issue(count int, notifyEmail string) ([]*models.LicenseCode, error) {
	if count <= 0 {
		count = 1
	}
	if count > maxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds limit %d", count, maxBatchSize)
	}

	out := make([]*models.LicenseCode, 0, count)
	for i := 0; i < count; i++ {
		code, err := utils.NewActivationCode()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		rec, err := s.Repo.Create(code)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	log.Printf("[license][issue] count=%d", len(out))

	if notifyEmail != "" && s.Email != nil {
		codes := make([]string, len(out))
		for i, rec := range out {
			codes[i] = rec.Code
		}
		if err := s.Email.SendLicenseCodes(notifyEmail, codes); err != nil {
			log.Printf("[license][issue][mail][err] to=%s: %v", notifyEmail, err)
		}
	}
	return out, nil
}

func (s *LicenseService) List(used *bool, limit, offset int) ([]*models.LicenseCode, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.List(used, limit, offset)
}

func (s *LicenseService) Get(id int64) (*models.LicenseCode, error) {
	rec, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrLicenseNotFound
	}
	return rec, nil
}

// Delete — только для невыпущенных в работу кодов: активированная
// запись неизменяема до конца жизни.
func (s *LicenseService) Delete(id int64) error {
	rec, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrLicenseNotFound
	}
	if rec.IsUsed {
		return ErrLicenseUsed
	}
	ok, err := s.Repo.Delete(id)
	if err != nil {
		return err
	}
	if !ok {
		// запись успели активировать между чтением и удалением
		return ErrLicenseUsed
	}
	log.Printf("[license][delete] id=%d", id)
	return nil
}

func (s *LicenseService) EventsFor(id int64) ([]*models.ActivationEvent, error) {
	rec, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrLicenseNotFound
	}
	return s.Events.ListByCodeID(id)
}

func (s *LicenseService) Stats() (*Stats, error) {
	used, err := s.Repo.CountByUsed(true)
	if err != nil {
		return nil, err
	}
	unused, err := s.Repo.CountByUsed(false)
	if err != nil {
		return nil, err
	}
	recent, err := s.Repo.CountActivatedSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		return nil, err
	}
	return &Stats{
		Total:    used + unused,
		Used:     used,
		Unused:   unused,
		UsedLast: recent,
	}, nil
}
