package credentials

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestUpsert(t *testing.T) {
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rec := &models.CredentialRecord{CaseID: "case-1", EncryptedUsername: "dXNlcg==", EncryptedPassword: "cGFzcw==", CreatedAt: at}

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`INSERT INTO credential_records .* ON CONFLICT \(case_id\)\s+DO UPDATE SET`).
			WithArgs("case-1", "dXNlcg==", "cGFzcw==", at).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Upsert(context.Background(), rec))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`INSERT INTO credential_records`).WillReturnError(errors.New("boom"))

		err := repo.Upsert(context.Background(), rec)
		require.Error(t, err)
		assert.Regexp(t, `db error: .*boom`, err.Error())
	})
}

func TestGetByCaseID(t *testing.T) {
	const q = `SELECT case_id, encrypted_username, encrypted_password, created_at FROM credential_records WHERE case_id = \$1`
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ok", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("case-1").
			WillReturnRows(sqlmock.NewRows([]string{"case_id", "encrypted_username", "encrypted_password", "created_at"}).
				AddRow("case-1", "dXNlcg==", "cGFzcw==", at))

		got, err := repo.GetByCaseID(context.Background(), "case-1")
		require.NoError(t, err)
		assert.Equal(t, "case-1", got.CaseID)
		assert.EqualValues(t, "dXNlcg==", got.EncryptedUsername)
		assert.EqualValues(t, "cGFzcw==", got.EncryptedPassword)
		assert.Equal(t, at, got.CreatedAt)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("case-2").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByCaseID(context.Background(), "case-2")
		require.ErrorIs(t, err, common.ErrorNotFound)
	})
}
