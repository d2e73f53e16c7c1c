package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"roster/internal/record/allocator"
	"roster/internal/record/handler/mocks"
	"roster/internal/record/models"
	"roster/internal/record/service"
	"roster/internal/record/store"
	"roster/internal/record/validator"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/audit/publisher"
	auditmemory "roster/pkg/platform/audit/store/memory"
	"roster/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/record-mocks.go -package=mocks Service

const base = "/api/v1/users"

type RecordHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  http.Handler
}

func TestRecordHandlerSuite(t *testing.T) {
	suite.Run(t, new(RecordHandlerSuite))
}

func (s *RecordHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = newRouter(s.service)
}

func newRouter(svc Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(svc, logger, nil).Register(r)
	return r
}

func annBody() map[string]any {
	return map[string]any{
		"Name":     "Ann",
		"Email":    "ann@x.io",
		"Age":      30,
		"Gender":   "female",
		"Address":  "1 Main St",
		"mobileNo": "0123456789",
	}
}

func (s *RecordHandlerSuite) TestCreate() {
	s.Run("success wraps the record in the envelope", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req *models.CreateRecordRequest) (*models.Record, error) {
				s.Equal("Ann", req.Name)
				s.Equal(json.Number("30"), req.Age)
				return &models.Record{ID: 1, Name: "Ann", Email: "ann@x.io", Age: 30, MobileNo: "0123456789"}, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, base+"/create-user", annBody()))

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		env := testutil.ReadEnvelope(s.T(), rr)
		s.True(env.Success)
		s.Equal(MsgCreated, env.Message)
		rec := testutil.DecodeData[models.Record](s.T(), env)
		s.Equal(int64(1), rec.ID)
		s.Equal("0123456789", rec.MobileNo)
	})

	s.Run("malformed json is a bad request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, base+"/create-user", `{"Name":`))
		testutil.AssertFailure(s.T(), rr, http.StatusBadRequest, "invalid request body")
	})

	s.Run("trailing data after the object is a bad request", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), http.MethodPost, base+"/create-user", `{"Name":"Ann"} garbage`))
		testutil.AssertFailure(s.T(), rr, http.StatusBadRequest, "invalid request body")
	})

	s.Run("validation error carries the field", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.NewField("Age", validator.MsgAge))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, base+"/create-user", annBody()))

		env := testutil.AssertFailure(s.T(), rr, http.StatusBadRequest, validator.MsgAge)
		s.Require().Len(env.Errors, 1)
		s.Equal("Age", env.Errors[0].Field)
	})

	s.Run("conflict is 409", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, service.MsgEmailExists))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, base+"/create-user", annBody()))
		testutil.AssertFailure(s.T(), rr, http.StatusConflict, service.MsgEmailExists)
	})

	s.Run("unexpected error hides detail", func() {
		s.service.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("dial tcp: refused"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, base+"/create-user", annBody()))
		testutil.AssertFailure(s.T(), rr, http.StatusInternalServerError, "internal server error")
	})
}

func (s *RecordHandlerSuite) TestUserIDParsing() {
	for _, path := range []string{
		base + "/read-user/abc",
		base + "/read-user/1.5",
	} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
		testutil.AssertFailure(s.T(), rr, http.StatusBadRequest, "userId must be an integer")
	}

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, base+"/delete-user/x"))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *RecordHandlerSuite) TestGetAndList() {
	s.Run("get passes the parsed id", func() {
		s.service.EXPECT().Get(gomock.Any(), int64(42)).Return(&models.Record{ID: 42}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, base+"/read-user/42"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.Equal(MsgFetched, testutil.ReadEnvelope(s.T(), rr).Message)
	})

	s.Run("get not found", func() {
		s.service.EXPECT().Get(gomock.Any(), int64(7)).Return(nil, dErrors.New(dErrors.CodeNotFound, service.MsgNotFound))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, base+"/read-user/7"))
		testutil.AssertFailure(s.T(), rr, http.StatusNotFound, service.MsgNotFound)
	})

	s.Run("get past the deadline is a gateway timeout", func() {
		s.service.EXPECT().Get(gomock.Any(), int64(8)).
			Return(nil, dErrors.Wrap(context.DeadlineExceeded, dErrors.CodeTimeout, service.MsgLookupFailed))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, base+"/read-user/8"))
		testutil.AssertFailure(s.T(), rr, http.StatusGatewayTimeout, service.MsgLookupFailed)
	})

	s.Run("list", func() {
		s.service.EXPECT().List(gomock.Any()).Return([]*models.Record{{ID: 1}, {ID: 2}}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, base+"/read-users"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		env := testutil.ReadEnvelope(s.T(), rr)
		s.Equal(MsgListed, env.Message)
		s.Len(testutil.DecodeData[[]models.Record](s.T(), env), 2)
	})
}

func (s *RecordHandlerSuite) TestUpdateAndDelete() {
	s.Run("update ignores email in the body", func() {
		s.service.EXPECT().Update(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ int64, req *models.UpdateRecordRequest) (*models.Record, error) {
				s.Equal(json.Number("31"), req.Age)
				return &models.Record{ID: 1, Age: 31, Email: "ann@x.io"}, nil
			})
		body := annBody()
		body["Age"] = 31
		body["Email"] = "other@x.io"

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, base+"/update-user/1", body))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		s.Equal(MsgUpdated, testutil.ReadEnvelope(s.T(), rr).Message)
	})

	s.Run("delete returns an empty object", func() {
		s.service.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodDelete, base+"/delete-user/1"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		env := testutil.ReadEnvelope(s.T(), rr)
		s.Equal(MsgDeleted, env.Message)
		s.JSONEq(`{}`, string(env.Data))
	})
}

// TestLifecycleAgainstRealService drives the full create/read/update/delete
// sequence through the router with the in-memory store.
func TestLifecycleAgainstRealService(t *testing.T) {
	st := store.NewInMemory()
	svc, err := service.New(st, allocator.NewStoreMax(st))
	require.NoError(t, err)
	router := newRouter(svc)

	testutil.Given(t, "an empty store", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, base+"/read-users"))
		testutil.AssertFailure(t, rr, http.StatusNotFound, service.MsgNoneFound)
	})

	testutil.When(t, "Ann is created", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, base+"/create-user", annBody()))
		testutil.AssertStatus(t, rr, http.StatusOK)
		rec := testutil.DecodeData[models.Record](t, testutil.ReadEnvelope(t, rr))
		assert.Equal(t, int64(1), rec.ID)
	})

	testutil.Then(t, "a second create with her email conflicts", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, base+"/create-user", annBody()))
		testutil.AssertFailure(t, rr, http.StatusConflict, service.MsgEmailExists)
	})

	testutil.Then(t, "an empty mobile number is rejected", func(t *testing.T) {
		body := annBody()
		body["Email"] = "bob@x.io"
		body["mobileNo"] = ""
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, base+"/create-user", body))
		testutil.AssertFailure(t, rr, http.StatusBadRequest, validator.MsgRequired)
	})

	testutil.Then(t, "a fractional age is rejected", func(t *testing.T) {
		body := annBody()
		body["Email"] = "bob@x.io"
		body["Age"] = 30.5
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, base+"/create-user", body))
		testutil.AssertFailure(t, rr, http.StatusBadRequest, validator.MsgAge)
	})

	testutil.When(t, "her age is updated", func(t *testing.T) {
		body := annBody()
		delete(body, "Email")
		body["Age"] = 31
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, base+"/update-user/1", body))
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, base+"/read-user/1"))
		rec := testutil.DecodeData[models.Record](t, testutil.ReadEnvelope(t, rr))
		assert.Equal(t, 31, rec.Age)
		assert.Equal(t, "ann@x.io", rec.Email)
	})

	testutil.When(t, "she is deleted", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, base+"/delete-user/1"))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	testutil.Then(t, "reading and deleting again are not found", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, base+"/read-user/1"))
		testutil.AssertFailure(t, rr, http.StatusNotFound, service.MsgNotFound)
		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, base+"/delete-user/1"))
		testutil.AssertFailure(t, rr, http.StatusNotFound, service.MsgNotFound)
	})
}

func TestCreateCarriesRequestScope(t *testing.T) {
	st := store.NewInMemory()
	events := auditmemory.NewInMemoryStore()
	svc, err := service.New(st, allocator.NewStoreMax(st),
		service.WithAuditPublisher(publisher.NewPublisher(events)))
	require.NoError(t, err)
	router := newRouter(svc)

	pinned := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	req := testutil.NewJSONRequest(t, http.MethodPost, base+"/create-user", annBody())
	req = testutil.WithRequestTime(testutil.WithRequestID(req, "req-77"), pinned)

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	rec := testutil.DecodeData[models.Record](t, testutil.ReadEnvelope(t, rr))
	assert.True(t, pinned.Equal(rec.CreatedAt))
	assert.True(t, pinned.Equal(rec.UpdatedAt))

	logged, err := events.ListByUser(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "req-77", logged[0].RequestID)
	assert.True(t, pinned.Equal(logged[0].Timestamp))
}
