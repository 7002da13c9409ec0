package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attestry/internal/verification"
	"attestry/internal/verification/handler"
	id "attestry/pkg/domain"
	dErrors "attestry/pkg/domain-errors"
	"attestry/pkg/testutil"
)

type stubEngine struct {
	result      verification.Result
	err         error
	gotHash     string
	gotFields   *id.SubjectFields
	gotVerifier id.OrgID
}

func (s *stubEngine) Verify(_ context.Context, rawHash string, extracted *id.SubjectFields, verifierOrgID id.OrgID) (verification.Result, error) {
	s.gotHash = rawHash
	s.gotFields = extracted
	s.gotVerifier = verifierOrgID
	return s.result, s.err
}

func newRouter(engine *stubEngine) http.Handler {
	r := chi.NewRouter()
	handler.New(engine, slog.Default()).Register(r)
	return r
}

const validHash = "4ec9599fc203d176a301536c2e091a19bc852759b255bd6818810a42c5fed14a"

func TestHandleVerify(t *testing.T) {
	t.Run("returns the engine decision", func(t *testing.T) {
		degreeID := id.NewDegreeID()
		engine := &stubEngine{result: verification.Result{
			Verified:   true,
			Confidence: 0.95,
			DegreeID:   degreeID,
			Method:     id.MethodHashAndFields,
		}}
		router := newRouter(engine)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/verify", handler.VerifyRequest{
			CertificateHash: validHash,
			ExtractedFields: &id.SubjectFields{StudentName: "Jane Doe"},
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[handler.VerifyResponse](t, rr)
		assert.True(t, resp.Verified)
		assert.InDelta(t, 0.95, resp.Confidence, 1e-9)
		assert.Equal(t, degreeID.String(), resp.DegreeID)
		assert.Equal(t, "HASH_AND_FIELDS", resp.Method)

		assert.Equal(t, validHash, engine.gotHash)
		require.NotNil(t, engine.gotFields)
		assert.Equal(t, "Jane Doe", engine.gotFields.StudentName)
	})

	t.Run("unknown hash omits degree id", func(t *testing.T) {
		engine := &stubEngine{result: verification.Result{
			Verified:   false,
			Confidence: 0,
			Method:     id.MethodHashNotFound,
		}}
		router := newRouter(engine)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/verify", handler.VerifyRequest{
			CertificateHash: validHash,
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[handler.VerifyResponse](t, rr)
		assert.False(t, resp.Verified)
		assert.Empty(t, resp.DegreeID)
	})

	t.Run("anonymous caller verifies with a nil verifier", func(t *testing.T) {
		engine := &stubEngine{result: verification.Result{Method: id.MethodHashOnly}}
		router := newRouter(engine)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/verify", handler.VerifyRequest{
			CertificateHash: validHash,
		})
		testutil.DoRequest(router, req)

		assert.True(t, engine.gotVerifier.IsNil())
	})

	t.Run("authenticated caller is recorded as the verifier", func(t *testing.T) {
		engine := &stubEngine{result: verification.Result{Method: id.MethodHashOnly}}
		router := newRouter(engine)
		verifier := id.NewOrgID()

		req := testutil.NewJSONRequest(t, http.MethodPost, "/verify", handler.VerifyRequest{
			CertificateHash: validHash,
		})
		req = testutil.WithActorOrg(req, verifier.String())
		testutil.DoRequest(router, req)

		assert.Equal(t, verifier, engine.gotVerifier)
	})

	t.Run("missing hash is a validation error", func(t *testing.T) {
		engine := &stubEngine{}
		router := newRouter(engine)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/verify", handler.VerifyRequest{})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "validation")
		assert.Empty(t, engine.gotHash, "engine is never reached")
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		router := newRouter(&stubEngine{})

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/verify", "{not json")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("engine errors map to their status", func(t *testing.T) {
		engine := &stubEngine{err: dErrors.New(dErrors.CodeInvalidInput, "malformed certificate hash")}
		router := newRouter(engine)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/verify", handler.VerifyRequest{
			CertificateHash: "zzz",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}
