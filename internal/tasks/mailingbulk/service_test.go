package mailingbulk

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatleads/internal/common/logger"
	"chatleads/internal/common/odoo"
)

type stubStore struct {
	listID   int64
	listErr  error
	partners []odoo.MailingContact
	existing map[string]bool

	created   []odoo.MailingContact
	batchSize int
	createErr error
}

func (s *stubStore) FindMailingList(ctx context.Context, name string) (int64, error) {
	return s.listID, s.listErr
}

func (s *stubStore) PartnersWithEmail(ctx context.Context) ([]odoo.MailingContact, error) {
	return s.partners, nil
}

func (s *stubStore) ExistingMailingEmails(ctx context.Context, listID int64) (map[string]bool, error) {
	if s.existing == nil {
		return map[string]bool{}, nil
	}
	return s.existing, nil
}

func (s *stubStore) CreateMailingContacts(ctx context.Context, listID int64, contacts []odoo.MailingContact, batchSize int) (int, error) {
	s.created = contacts
	s.batchSize = batchSize
	if s.createErr != nil {
		return 0, s.createErr
	}
	return len(contacts), nil
}

func testService(t *testing.T, store ContactStore) *Service {
	t.Helper()
	return NewService(ServiceDependencies{
		Logger: logger.NewTestLogger(t),
		Store:  store,
	}, DefaultConfig())
}

func TestExecute(t *testing.T) {
	store := &stubStore{
		listID: 6,
		partners: []odoo.MailingContact{
			{Name: "Juan", Email: "juan@obra.mx"},
			{Name: "Ana", Email: "ana@obra.mx\nsegundo@obra.mx"},
			{Name: "Sin correo", Email: "sin-arroba"},
			{Name: "Ya suscrito", Email: "viejo@obra.mx"},
		},
		existing: map[string]bool{"viejo@obra.mx": true},
	}

	svc := testService(t, store)
	out, err := svc.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, int64(6), out.ListID)
	assert.Equal(t, 4, out.Candidates)
	assert.Equal(t, 2, out.Created)
	assert.Equal(t, 2, out.Skipped)
	assert.Equal(t, 50, store.batchSize)
	assert.Equal(t, []odoo.MailingContact{
		{Name: "Juan", Email: "juan@obra.mx"},
		{Name: "Ana", Email: "ana@obra.mx"},
	}, store.created)
}

func TestExecute_DuplicatePartnersCollapse(t *testing.T) {
	store := &stubStore{
		listID: 6,
		partners: []odoo.MailingContact{
			{Name: "Juan", Email: "juan@obra.mx"},
			{Name: "Juan otra vez", Email: "JUAN@obra.mx"},
		},
	}

	svc := testService(t, store)
	out, err := svc.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 1, out.Skipped)
	require.Len(t, store.created, 1)
	assert.Equal(t, "Juan", store.created[0].Name)
}

func TestExecute_DryRun(t *testing.T) {
	store := &stubStore{
		listID:   6,
		partners: []odoo.MailingContact{{Name: "Juan", Email: "juan@obra.mx"}},
	}

	svc := testService(t, store)
	out, err := svc.Execute(context.Background(), &Input{DryRun: true})
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, 0, out.Created)
	assert.Nil(t, store.created, "dry run never writes")
}

func TestExecute_MissingList(t *testing.T) {
	store := &stubStore{listErr: errors.New("mailing list not found")}
	svc := testService(t, store)

	_, err := svc.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}

func TestExecute_CreateFailureReportsPartialProgress(t *testing.T) {
	store := &stubStore{
		listID:    6,
		partners:  []odoo.MailingContact{{Name: "Juan", Email: "juan@obra.mx"}},
		createErr: errors.New("batch 0 rejected"),
	}

	svc := testService(t, store)
	out, err := svc.Execute(context.Background(), &Input{})
	require.Error(t, err)
	require.NotNil(t, out)
	assert.False(t, out.Success)
	assert.Equal(t, 0, out.Created)
}

func TestExecute_ListNameOverride(t *testing.T) {
	store := &stubStore{listID: 9}
	svc := testService(t, store)

	out, err := svc.Execute(context.Background(), &Input{ListName: "Campaña Especial"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), out.ListID)
}

func TestCleanEmail(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain", "juan@obra.mx", "juan@obra.mx"},
		{"surrounding whitespace", "  juan@obra.mx  ", "juan@obra.mx"},
		{"newline separated takes first", "uno@a.mx\ndos@b.mx", "uno@a.mx"},
		{"comma separated takes first", "uno@a.mx, dos@b.mx", "uno@a.mx"},
		{"semicolon separated takes first", "uno@a.mx; dos@b.mx", "uno@a.mx"},
		{"stray leading colon", ": juan@obra.mx", "juan@obra.mx"},
		{"no at sign", "telefono 555-0100", ""},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanEmail(tt.raw))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.ListName = ""
	assert.Error(t, cfg.Validate())
}
