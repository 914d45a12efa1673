package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
)

type meetingRepository struct {
	db *meetingTable
}

var _ meeting.Repository = (*meetingRepository)(nil) // interface compliance check

func NewMeetingRepository(db *DB) meeting.Repository {
	return &meetingRepository{db: db.mtg}
}

func (repo *meetingRepository) query() []meeting.Meeting {
	meetings := make([]meeting.Meeting, 0, len(repo.db.table))
	for _, mtg := range repo.db.table {
		meetings = append(meetings, *mtg)
	}
	sort.Slice(meetings, func(i, j int) bool {
		if meetings[i].Date != meetings[j].Date {
			return meetings[i].Date < meetings[j].Date
		}
		return meetings[i].Time < meetings[j].Time
	})
	return meetings
}

func (repo *meetingRepository) CreateMeeting(ctx context.Context, mtg meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	mtg.ID = uuid.New().String()
	repo.db.table[mtg.ID] = &mtg
	return mtg, nil
}

func (repo *meetingRepository) GetMeetingByID(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mtg, ok := repo.db.table[id]; ok {
		return *mtg, nil
	}
	return meeting.Meeting{}, meeting.ErrNotFound
}

func (repo *meetingRepository) QueryMeetingsByDate(ctx context.Context, date string, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var meetings []meeting.Meeting
	for _, mtg := range repo.query() {
		if mtg.Date == date {
			meetings = append(meetings, mtg)
		}
	}
	return meetings, nil
}

func (repo *meetingRepository) QueryMeetingsByStudentEmail(ctx context.Context, email string, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var meetings []meeting.Meeting
	for _, mtg := range repo.query() {
		if mtg.StudentEmail == email {
			meetings = append(meetings, mtg)
		}
	}
	return meetings, nil
}

func (repo *meetingRepository) QueryMeetingsByProfessorEmail(ctx context.Context, email string, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var meetings []meeting.Meeting
	for _, mtg := range repo.query() {
		if mtg.ProfessorEmail == email {
			meetings = append(meetings, mtg)
		}
	}
	return meetings, nil
}

func (repo *meetingRepository) DeleteMeeting(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return meeting.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
