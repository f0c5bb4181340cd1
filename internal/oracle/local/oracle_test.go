package local

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
)

func representServer(t *testing.T, results []RepresentResult) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/represent", r.URL.Path)
		_ = json.NewEncoder(w).Encode(RepresentResponse{Results: results})
	}))
}

func newTestOracle(t *testing.T, srv *httptest.Server) (*Oracle, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewOracle(Config{RepresentURL: srv.URL}, mock), mock
}

func TestOracle_Capabilities(t *testing.T) {
	srv := representServer(t, nil)
	defer srv.Close()

	o, _ := newTestOracle(t, srv)
	caps := o.Capabilities()
	assert.True(t, caps.Compare)
	assert.False(t, caps.Liveness)
}

func TestOracle_Enroll(t *testing.T) {
	srv := representServer(t, []RepresentResult{{Embedding: []float64{0.1, 0.2}}})
	defer srv.Close()

	o, mock := newTestOracle(t, srv)
	subjectID := uuid.New()

	mock.ExpectQuery(`INSERT INTO oracle_subjects`).
		WithArgs(pgxmock.AnyArg(), "a@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(subjectID))
	mock.ExpectExec(`INSERT INTO oracle_faces`).
		WithArgs(pgxmock.AnyArg(), subjectID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	got, err := o.Enroll(context.Background(), "a@x.com", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, subjectID.String(), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOracle_Enroll_NoFace(t *testing.T) {
	srv := representServer(t, nil)
	defer srv.Close()

	o, _ := newTestOracle(t, srv)

	_, err := o.Enroll(context.Background(), "a@x.com", []byte("img"))
	assert.ErrorIs(t, err, oracle.ErrNoFaceInImage)
}

func TestOracle_Search(t *testing.T) {
	srv := representServer(t, []RepresentResult{{Embedding: []float64{0.1, 0.2}}})
	defer srv.Close()

	o, mock := newTestOracle(t, srv)
	subjectID := uuid.New()

	mock.ExpectQuery(`SELECT subject_id, label, similarity FROM`).
		WithArgs(pgxmock.AnyArg(), searchLimit).
		WillReturnRows(pgxmock.NewRows([]string{"subject_id", "label", "similarity"}).
			AddRow(subjectID, "a@x.com", 0.97))

	candidates, err := o.Search(context.Background(), []byte("img"))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, subjectID.String(), candidates[0].SubjectID)
	assert.InDelta(t, 0.97, candidates[0].Score, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOracle_Compare(t *testing.T) {
	srv := representServer(t, []RepresentResult{{Embedding: []float64{0.1, 0.2}}})
	defer srv.Close()

	o, mock := newTestOracle(t, srv)
	subjectID := uuid.New()

	mock.ExpectQuery(`SELECT 1 - \(embedding <=> \$1\) AS similarity`).
		WithArgs(pgxmock.AnyArg(), subjectID).
		WillReturnRows(pgxmock.NewRows([]string{"similarity"}).AddRow(0.91))

	score, err := o.Compare(context.Background(), subjectID.String(), []byte("img"))
	require.NoError(t, err)
	assert.InDelta(t, 0.91, score, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOracle_Compare_NegativeSimilarityClamped(t *testing.T) {
	srv := representServer(t, []RepresentResult{{Embedding: []float64{0.1, 0.2}}})
	defer srv.Close()

	o, mock := newTestOracle(t, srv)
	subjectID := uuid.New()

	mock.ExpectQuery(`SELECT 1 - \(embedding <=> \$1\) AS similarity`).
		WithArgs(pgxmock.AnyArg(), subjectID).
		WillReturnRows(pgxmock.NewRows([]string{"similarity"}).AddRow(-0.2))

	score, err := o.Compare(context.Background(), subjectID.String(), []byte("img"))
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestOracle_Liveness_Unavailable(t *testing.T) {
	srv := representServer(t, nil)
	defer srv.Close()

	o, _ := newTestOracle(t, srv)

	_, err := o.Liveness(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, oracle.ErrCapabilityUnavailable)
}

func TestOracle_BadSubjectID(t *testing.T) {
	srv := representServer(t, nil)
	defer srv.Close()

	o, _ := newTestOracle(t, srv)

	_, err := o.GetSubject(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, oracle.ErrSubjectNotFound)

	assert.ErrorIs(t, o.DeleteSubject(context.Background(), "not-a-uuid"), oracle.ErrSubjectNotFound)
}

func TestOracle_RepresentUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	o, _ := newTestOracle(t, srv)

	_, err := o.Search(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, oracle.ErrUnavailable)
}
