package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licgate/internal/models"
	"licgate/internal/services"
)

type fakeLicenseStore struct {
	recs   []*models.LicenseCode
	nextID int64
}

func (s *fakeLicenseStore) Create(code string) (*models.LicenseCode, error) {
	s.nextID++
	rec := &models.LicenseCode{ID: s.nextID, Code: code, CreatedAt: time.Now()}
	s.recs = append(s.recs, rec)
	return rec, nil
}

func (s *fakeLicenseStore) GetByID(id int64) (*models.LicenseCode, error) {
	for _, rec := range s.recs {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (s *fakeLicenseStore) List(used *bool, limit, offset int) ([]*models.LicenseCode, error) {
	var out []*models.LicenseCode
	for _, rec := range s.recs {
		if used == nil || rec.IsUsed == *used {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeLicenseStore) Delete(id int64) (bool, error) {
	for i, rec := range s.recs {
		if rec.ID == id && !rec.IsUsed {
			s.recs = append(s.recs[:i], s.recs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeLicenseStore) CountByUsed(used bool) (int, error) {
	c := 0
	for _, rec := range s.recs {
		if rec.IsUsed == used {
			c++
		}
	}
	return c, nil
}

func (s *fakeLicenseStore) CountActivatedSince(since time.Time) (int, error) {
	c := 0
	for _, rec := range s.recs {
		if rec.UsedAt != nil && !rec.UsedAt.Before(since) {
			c++
		}
	}
	return c, nil
}

type fakeEventLog struct{}

func (fakeEventLog) ListByCodeID(codeID int64) ([]*models.ActivationEvent, error) {
	return []*models.ActivationEvent{{ID: 1, CodeID: &codeID, MachineID: "m", Outcome: models.OutcomeActivated}}, nil
}

type fakeEmail struct {
	to    string
	codes []string
	err   error
}

func (f *fakeEmail) SendLicenseCodes(email string, codes []string) error {
	f.to = email
	f.codes = codes
	return f.err
}

func TestIssueGeneratesUniqueCodes(t *testing.T) {
	store := &fakeLicenseStore{}
	svc := services.NewLicenseService(store, fakeEventLog{}, nil)

	codes, err := svc.Issue(20, "")

	require.NoError(t, err)
	require.Len(t, codes, 20)
	seen := map[string]bool{}
	for _, rec := range codes {
		assert.Len(t, rec.Code, 19)
		assert.False(t, seen[rec.Code], "дубликат кода %s", rec.Code)
		seen[rec.Code] = true
	}
}

func TestIssueSendsEmail(t *testing.T) {
	store := &fakeLicenseStore{}
	mail := &fakeEmail{}
	svc := services.NewLicenseService(store, fakeEventLog{}, mail)

	codes, err := svc.Issue(3, "customer@example.com")

	require.NoError(t, err)
	assert.Equal(t, "customer@example.com", mail.to)
	assert.Len(t, mail.codes, len(codes))
}

func TestIssueMailFailureDoesNotFailIssue(t *testing.T) {
	store := &fakeLicenseStore{}
	mail := &fakeEmail{err: assert.AnError}
	svc := services.NewLicenseService(store, fakeEventLog{}, mail)

	codes, err := svc.Issue(2, "customer@example.com")

	require.NoError(t, err)
	assert.Len(t, codes, 2)
}

func TestIssueRejectsOversizedBatch(t *testing.T) {
	svc := services.NewLicenseService(&fakeLicenseStore{}, fakeEventLog{}, nil)

	_, err := svc.Issue(100000, "")

	require.Error(t, err)
}

func TestDeleteUnusedCode(t *testing.T) {
	store := &fakeLicenseStore{}
	svc := services.NewLicenseService(store, fakeEventLog{}, nil)
	codes, err := svc.Issue(1, "")
	require.NoError(t, err)

	err = svc.Delete(codes[0].ID)

	require.NoError(t, err)
	rec, _ := store.GetByID(codes[0].ID)
	assert.Nil(t, rec)
}

func TestDeleteUsedCodeRefused(t *testing.T) {
	store := &fakeLicenseStore{}
	svc := services.NewLicenseService(store, fakeEventLog{}, nil)
	codes, err := svc.Issue(1, "")
	require.NoError(t, err)

	m := "machine-1"
	now := time.Now()
	codes[0].IsUsed = true
	codes[0].MachineID = &m
	codes[0].UsedAt = &now

	err = svc.Delete(codes[0].ID)

	assert.ErrorIs(t, err, services.ErrLicenseUsed)
	rec, _ := store.GetByID(codes[0].ID)
	assert.NotNil(t, rec, "использованная запись не должна удаляться")
}

func TestDeleteMissingCode(t *testing.T) {
	svc := services.NewLicenseService(&fakeLicenseStore{}, fakeEventLog{}, nil)

	err := svc.Delete(42)

	assert.ErrorIs(t, err, services.ErrLicenseNotFound)
}

func TestGetMissingCode(t *testing.T) {
	svc := services.NewLicenseService(&fakeLicenseStore{}, fakeEventLog{}, nil)

	_, err := svc.Get(42)

	assert.ErrorIs(t, err, services.ErrLicenseNotFound)
}

func TestStats(t *testing.T) {
	store := &fakeLicenseStore{}
	svc := services.NewLicenseService(store, fakeEventLog{}, nil)
	codes, err := svc.Issue(3, "")
	require.NoError(t, err)

	m := "machine-1"
	now := time.Now()
	codes[0].IsUsed = true
	codes[0].MachineID = &m
	codes[0].UsedAt = &now

	stats, err := svc.Stats()

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Used)
	assert.Equal(t, 2, stats.Unused)
	assert.Equal(t, 1, stats.UsedLast)
}

func TestEventsForMissingCode(t *testing.T) {
	svc := services.NewLicenseService(&fakeLicenseStore{}, fakeEventLog{}, nil)

	_, err := svc.EventsFor(42)

	assert.ErrorIs(t, err, services.ErrLicenseNotFound)
}
