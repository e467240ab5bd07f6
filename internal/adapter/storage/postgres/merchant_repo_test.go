package postgres

import (
	"context"
	"testing"
	"time"

	"crypto-payment-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMerchant() *domain.Merchant {
	return &domain.Merchant{
		ID:         uuid.New(),
		PublicID:   "mch_1122334455667788",
		Name:       "Acme Coffee",
		Email:      "pay@acme.test",
		SecretHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		Status:     domain.MerchantStatusActive,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func merchantTestColumns() []string {
	return []string{"id", "public_id", "name", "email", "secret_hash", "status", "created_at", "updated_at"}
}

func merchantRow(m *domain.Merchant) *pgxmock.Rows {
	return pgxmock.NewRows(merchantTestColumns()).AddRow(
		m.ID, m.PublicID, m.Name, m.Email,
		m.SecretHash, m.Status, m.CreatedAt, m.UpdatedAt,
	)
}

func TestMerchantRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	m := newTestMerchant()

	mock.ExpectExec("INSERT INTO merchants").
		WithArgs(m.ID, m.PublicID, m.Name, m.Email,
			m.SecretHash, m.Status, m.CreatedAt, m.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), m)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	m := newTestMerchant()

	mock.ExpectQuery("SELECT .+ FROM merchants WHERE email").
		WithArgs(m.Email).
		WillReturnRows(merchantRow(m))

	result, err := repo.GetByEmail(context.Background(), m.Email)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, m.PublicID, result.PublicID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_GetByEmail_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM merchants WHERE email").
		WithArgs("nobody@acme.test").
		WillReturnRows(pgxmock.NewRows(merchantTestColumns()))

	result, err := repo.GetByEmail(context.Background(), "nobody@acme.test")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_GetByPublicID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	m := newTestMerchant()

	mock.ExpectQuery("SELECT .+ FROM merchants WHERE public_id").
		WithArgs(m.PublicID).
		WillReturnRows(merchantRow(m))

	result, err := repo.GetByPublicID(context.Background(), m.PublicID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, m.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE merchants SET status").
		WithArgs(domain.MerchantStatusInactive, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), id, domain.MerchantStatusInactive)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE merchants SET status").
		WithArgs(domain.MerchantStatusActive, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), id, domain.MerchantStatusActive)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
