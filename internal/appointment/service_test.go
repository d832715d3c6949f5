package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	doctors map[int64]*Doctor

	createErr    error
	created      []*Appointment
	nextID       int64
	updated      map[int64]struct {
		status Status
		notes  string
	}
	updateErr error

	countFilter Filter
	listFilter  Filter
	listLimit   int
	listOffset  int
	total       int
	items       []AppointmentWithDoctor
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		doctors: map[int64]*Doctor{},
		nextID:  1,
		updated: map[int64]struct {
			status Status
			notes  string
		}{},
	}
}

func (f *fakeRepo) GetVerifiedDoctor(_ context.Context, id int64) (*Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

func (f *fakeRepo) Create(_ context.Context, a *Appointment) (*Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	created := *a
	created.ID = f.nextID
	f.nextID++
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.created = append(f.created, &created)
	return &created, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status Status, notes string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated[id] = struct {
		status Status
		notes  string
	}{status, notes}
	return nil
}

func (f *fakeRepo) Count(_ context.Context, filter Filter) (int, error) {
	f.countFilter = filter
	return f.total, nil
}

func (f *fakeRepo) List(_ context.Context, filter Filter, limit, offset int) ([]AppointmentWithDoctor, error) {
	f.listFilter = filter
	f.listLimit = limit
	f.listOffset = offset
	return f.items, nil
}

func newTestService(repo *fakeRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestBookSuccess(t *testing.T) {
	repo := newFakeRepo()
	repo.doctors[3] = &Doctor{ID: 3, Name: "Dr. Mehta", Specialization: "Cardiology"}
	svc := newTestService(repo)

	conf, err := svc.Book(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(1), conf.AppointmentID)
	assert.Equal(t, "Dr. Mehta", conf.DoctorName)
	assert.Equal(t, "2026-03-11", conf.Date)
	assert.Equal(t, "10:00", conf.Time)
	assert.Equal(t, StatusPending, conf.Status)

	require.Len(t, repo.created, 1)
	assert.Equal(t, StatusPending, repo.created[0].Status)
}

func TestBookUnknownDoctor(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Book(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestBookValidationRunsBeforeStorage(t *testing.T) {
	repo := newFakeRepo()
	repo.doctors[3] = &Doctor{ID: 3, Name: "Dr. Mehta"}
	svc := newTestService(repo)

	in := validInput()
	in.AppointmentDate = "2020-01-01"

	_, err := svc.Book(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, repo.created, "validation failures must not reach the repository")
}

func TestBookSlotConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.doctors[3] = &Doctor{ID: 3, Name: "Dr. Mehta"}
	repo.createErr = ErrSlotTaken
	svc := newTestService(repo)

	_, err := svc.Book(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestTransition(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.Transition(context.Background(), 42, StatusConfirmed, "see you then"))
	assert.Equal(t, StatusConfirmed, repo.updated[42].status)
	assert.Equal(t, "see you then", repo.updated[42].notes)
}

func TestTransitionInvalidStatus(t *testing.T) {
	svc := newTestService(newFakeRepo())

	err := svc.Transition(context.Background(), 42, Status("rescheduled"), "")

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

// Any enum value may follow any other; completed straight from pending is
// allowed.
func TestTransitionIsFreeForm(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	for _, status := range []Status{StatusCompleted, StatusPending, StatusCancelled, StatusConfirmed} {
		require.NoError(t, svc.Transition(context.Background(), 7, status, ""))
		assert.Equal(t, status, repo.updated[7].status)
	}
}

func TestTransitionNotFound(t *testing.T) {
	repo := newFakeRepo()
	repo.updateErr = ErrAppointmentNotFound
	svc := newTestService(repo)

	err := svc.Cancel(context.Background(), 42, "")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestTransitionTruncatesNotes(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}
	require.NoError(t, svc.Confirm(context.Background(), 1, string(long)))
	assert.Len(t, repo.updated[1].notes, maxNotesLen)
}

func TestShortcutsFixTheStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Confirm(ctx, 1, ""))
	assert.Equal(t, StatusConfirmed, repo.updated[1].status)

	require.NoError(t, svc.Complete(ctx, 2, ""))
	assert.Equal(t, StatusCompleted, repo.updated[2].status)

	require.NoError(t, svc.Cancel(ctx, 3, ""))
	assert.Equal(t, StatusCancelled, repo.updated[3].status)
}

func TestListDefaultsAndTotal(t *testing.T) {
	repo := newFakeRepo()
	repo.total = 57
	repo.items = []AppointmentWithDoctor{{DoctorName: "Dr. Mehta"}}
	svc := newTestService(repo)

	res, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.PerPage)
	assert.Equal(t, 57, res.Total)
	assert.Equal(t, 10, repo.listLimit)
	assert.Equal(t, 0, repo.listOffset)
	assert.Len(t, res.Appointments, 1)
}

func TestListPaginationClamps(t *testing.T) {
	tests := []struct {
		name        string
		page        string
		perPage     string
		wantPage    int
		wantPerPage int
		wantOffset  int
	}{
		{"per_page above max clamps to 100", "1", "500", 1, 100, 0},
		{"per_page below 1 clamps to 1", "1", "0", 1, 1, 0},
		{"negative page clamps to 1", "-4", "10", 1, 10, 0},
		{"offset from page", "3", "20", 3, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			svc := newTestService(repo)

			res, err := svc.List(context.Background(), ListQuery{Page: tt.page, PerPage: tt.perPage})
			require.NoError(t, err)

			assert.Equal(t, tt.wantPage, res.Page)
			assert.Equal(t, tt.wantPerPage, res.PerPage)
			assert.Equal(t, tt.wantPerPage, repo.listLimit)
			assert.Equal(t, tt.wantOffset, repo.listOffset)
		})
	}
}

func TestListRejectsNonIntegerPagination(t *testing.T) {
	svc := newTestService(newFakeRepo())

	for _, q := range []ListQuery{{Page: "one"}, {PerPage: "ten"}} {
		_, err := svc.List(context.Background(), q)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Error(), "integers")
	}
}

func TestListFilters(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.List(context.Background(), ListQuery{
		DoctorID: "3",
		Status:   "confirmed",
		FromDate: "2026-03-01",
		ToDate:   "2026-03-31",
	})
	require.NoError(t, err)

	require.NotNil(t, repo.listFilter.DoctorID)
	assert.Equal(t, int64(3), *repo.listFilter.DoctorID)
	require.NotNil(t, repo.listFilter.Status)
	assert.Equal(t, StatusConfirmed, *repo.listFilter.Status)
	require.NotNil(t, repo.listFilter.FromDate)
	assert.Equal(t, "2026-03-01", repo.listFilter.FromDate.Format("2006-01-02"))
	require.NotNil(t, repo.listFilter.ToDate)

	// Count sees the same filter as List.
	assert.Equal(t, repo.listFilter, repo.countFilter)
}

func TestListFilterValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())
	tests := []struct {
		name string
		q    ListQuery
		want string
	}{
		{"bad status", ListQuery{Status: "expired"}, "invalid status"},
		{"bad doctor_id", ListQuery{DoctorID: "dr"}, "doctor_id"},
		{"bad from_date", ListQuery{FromDate: "03/01/2026"}, "from_date"},
		{"bad to_date", ListQuery{ToDate: "2026-13-40"}, "to_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.List(context.Background(), tt.q)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), tt.want)
		})
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("expired").Valid())
	assert.False(t, Status("").Valid())

	assert.True(t, StatusPending.Active())
	assert.True(t, StatusConfirmed.Active())
	assert.False(t, StatusCompleted.Active())
	assert.False(t, StatusCancelled.Active())
}

func TestBookWrapsRepoErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.doctors[3] = &Doctor{ID: 3, Name: "Dr. Mehta"}
	repo.createErr = errors.New("connection reset")
	svc := newTestService(repo)

	_, err := svc.Book(context.Background(), validInput())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotTaken)
}
