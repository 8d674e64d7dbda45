package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/classroom-attendance/internal/models"
)

// fakeDB is an in-memory store honouring the same uniqueness and cascade
// rules as the Postgres schema.
type fakeDB struct {
	mu           sync.Mutex
	nextID       int64
	students     map[int64]*models.Student
	sessions     map[int64]*models.AttendanceSession
	records      map[[2]int64]bool // (student, session)
	competencies []models.Competency
	studentComps map[[2]int64]competencyRow // (student, competency)
	upserts      int
}

func newFakeDB() *fakeDB {
	db := &fakeDB{
		students:     map[int64]*models.Student{},
		sessions:     map[int64]*models.AttendanceSession{},
		records:      map[[2]int64]bool{},
		studentComps: map[[2]int64]competencyRow{},
	}
	names := []string{"Estadística", "Regresión Logística", "Regresión Lineal", "Máquina de Soporte Vectorial", "Clustering", "TSNE", "VHTSNE", "UMAP", "Kernels", "DBSCAN"}
	for i, name := range names {
		db.competencies = append(db.competencies, models.Competency{ID: int64(100 + i), Name: name, DisplayOrder: i + 1})
	}
	return db
}

func (db *fakeDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *fakeDB) addStudent(first, last string, active bool) *models.Student {
	db.mu.Lock()
	defer db.mu.Unlock()
	st := &models.Student{ID: db.id(), FirstName: first, LastName: last, IsActive: active, CreatedAt: time.Now()}
	st.Normalize()
	db.students[st.ID] = st
	return st
}

func (db *fakeDB) addSession(day time.Time) *models.AttendanceSession {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := &models.AttendanceSession{ID: db.id(), Date: day, Description: models.DefaultSessionDescription(day)}
	db.sessions[s.ID] = s
	return s
}

func (db *fakeDB) rosterSorted(filter func(*models.Student) bool) []models.Student {
	var out []models.Student
	for _, st := range db.students {
		if filter(st) {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastNameNormalized != out[j].LastNameNormalized {
			return out[i].LastNameNormalized < out[j].LastNameNormalized
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type fakeStudents struct{ db *fakeDB }

func (f fakeStudents) ListByActive(ctx context.Context, active bool) ([]models.Student, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.rosterSorted(func(s *models.Student) bool { return s.IsActive == active }), nil
}

func (f fakeStudents) ListSummaries(ctx context.Context) ([]models.StudentSummary, error) {
	f.db.mu.Lock()
	active := f.db.rosterSorted(func(s *models.Student) bool { return s.IsActive })
	f.db.mu.Unlock()
	out := make([]models.StudentSummary, 0, len(active))
	for _, st := range active {
		sum, _ := f.FindSummary(ctx, st.ID)
		out = append(out, *sum)
	}
	return out, nil
}

func (f fakeStudents) FindSummary(ctx context.Context, id int64) (*models.StudentSummary, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	st, ok := f.db.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	sum := &models.StudentSummary{Student: *st}
	for key, present := range f.db.records {
		if key[0] != id {
			continue
		}
		if present {
			sum.PresentCount++
		} else {
			sum.AbsentCount++
		}
	}
	for key, sc := range f.db.studentComps {
		if key[0] != id {
			continue
		}
		sum.CompetenciesTotal++
		if sc.IsAchieved {
			sum.CompetenciesAchieved++
		}
	}
	return sum, nil
}

func (f fakeStudents) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	st, ok := f.db.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *st
	return &cp, nil
}

func (f fakeStudents) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var missing []int64
	for _, id := range ids {
		if _, ok := f.db.students[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

func (f fakeStudents) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, st := range f.db.students {
		if st.Email != nil && *st.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeStudents) Create(ctx context.Context, student *models.Student) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	student.Normalize()
	student.ID = f.db.id()
	student.CreatedAt = time.Now()
	cp := *student
	f.db.students[student.ID] = &cp
	return nil
}

func (f fakeStudents) Update(ctx context.Context, student *models.Student) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.students[student.ID]; !ok {
		return false, nil
	}
	student.Normalize()
	cp := *student
	f.db.students[student.ID] = &cp
	return true, nil
}

func (f fakeStudents) SetActive(ctx context.Context, id int64, active bool) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	st, ok := f.db.students[id]
	if !ok || st.IsActive == active {
		return false, nil
	}
	st.IsActive = active
	return true, nil
}

func (f fakeStudents) Delete(ctx context.Context, id int64) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.students[id]; !ok {
		return false, nil
	}
	delete(f.db.students, id)
	for key := range f.db.records {
		if key[0] == id {
			delete(f.db.records, key)
		}
	}
	for key := range f.db.studentComps {
		if key[0] == id {
			delete(f.db.studentComps, key)
		}
	}
	return true, nil
}

type fakeSessions struct{ db *fakeDB }

func (f fakeSessions) GetOrCreate(ctx context.Context, day string, description string) (*models.AttendanceSession, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.sessions {
		if s.DateKey() == day {
			cp := *s
			return &cp, nil
		}
	}
	date, err := time.Parse(models.DateLayout, day)
	if err != nil {
		return nil, err
	}
	s := &models.AttendanceSession{ID: f.db.id(), Date: date, Description: description, CreatedAt: time.Now()}
	f.db.sessions[s.ID] = s
	cp := *s
	return &cp, nil
}

func (f fakeSessions) FindByID(ctx context.Context, id int64) (*models.AttendanceSession, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f fakeSessions) ListWithStats(ctx context.Context) ([]models.SessionStats, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []models.SessionStats
	for _, s := range f.db.sessions {
		st := models.SessionStats{AttendanceSession: *s}
		for key, present := range f.db.records {
			if key[1] != s.ID {
				continue
			}
			if present {
				st.Present++
			} else {
				st.Absent++
			}
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

type fakeRecords struct{ db *fakeDB }

func (f fakeRecords) UpsertMany(ctx context.Context, sessionID int64, marks map[int64]bool) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for studentID, present := range marks {
		f.db.records[[2]int64{studentID, sessionID}] = present
		f.db.upserts++
	}
	return nil
}

func (f fakeRecords) PresenceBySession(ctx context.Context, sessionID int64) (map[int64]bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := map[int64]bool{}
	for key, present := range f.db.records {
		if key[1] == sessionID {
			out[key[0]] = present
		}
	}
	return out, nil
}

func (f fakeRecords) Counts(ctx context.Context, sessionID int64) (models.SessionCounts, error) {
	presence, _ := f.PresenceBySession(ctx, sessionID)
	var counts models.SessionCounts
	for _, present := range presence {
		if present {
			counts.Present++
		} else {
			counts.Absent++
		}
	}
	return counts, nil
}

func (f fakeRecords) ListBySession(ctx context.Context, sessionID int64) ([]models.SessionRecord, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	roster := f.db.rosterSorted(func(*models.Student) bool { return true })
	var out []models.SessionRecord
	for _, st := range roster {
		present, ok := f.db.records[[2]int64{st.ID, sessionID}]
		if !ok {
			continue
		}
		out = append(out, models.SessionRecord{
			AttendanceRecord: models.AttendanceRecord{StudentID: st.ID, SessionID: sessionID, IsPresent: present},
			FirstName:        st.FirstName,
			LastName:         st.LastName,
		})
	}
	return out, nil
}

type fakeCompetencies struct{ db *fakeDB }

func (f fakeCompetencies) Count(ctx context.Context) (int, error) {
	return len(f.db.competencies), nil
}

func (f fakeCompetencies) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	known := map[int64]bool{}
	for _, c := range f.db.competencies {
		known[c.ID] = true
	}
	var missing []int64
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

// competencyRow is one stored (student, competency) pair.
type competencyRow struct {
	IsAchieved bool
	Notes      string
}

type fakeStudentCompetencies struct{ db *fakeDB }

func (f fakeStudentCompetencies) StatusForStudent(ctx context.Context, studentID int64) ([]models.CompetencyStatus, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make([]models.CompetencyStatus, 0, len(f.db.competencies))
	for _, c := range f.db.competencies {
		status := models.CompetencyStatus{Competency: c}
		if sc, ok := f.db.studentComps[[2]int64{studentID, c.ID}]; ok {
			status.IsAchieved = sc.IsAchieved
			status.Notes = sc.Notes
		}
		out = append(out, status)
	}
	return out, nil
}

func (f fakeStudentCompetencies) UpsertMany(ctx context.Context, studentID int64, updates []models.CompetencyUpdate) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range updates {
		key := [2]int64{studentID, u.CompetencyID}
		sc := f.db.studentComps[key]
		sc.IsAchieved = u.IsAchieved
		if u.Notes != nil {
			sc.Notes = *u.Notes
		}
		f.db.studentComps[key] = sc
	}
	return nil
}

func (f fakeStudentCompetencies) AchievedCount(ctx context.Context, studentID int64) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n := 0
	for key, sc := range f.db.studentComps {
		if key[0] == studentID && sc.IsAchieved {
			n++
		}
	}
	return n, nil
}

// fixedClock returns a Clock pinned to t.
func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type services struct {
	attendance   *AttendanceService
	students     *StudentService
	competencies *CompetencyService
	exports      *ExportService
}

func newServices(db *fakeDB, now time.Time, loc *time.Location) services {
	att := NewAttendanceService(fakeStudents{db}, fakeSessions{db}, fakeRecords{db}, loc, fixedClock(now), nil, nil)
	return services{
		attendance:   att,
		students:     NewStudentService(fakeStudents{db}, fakeCompetencies{db}, nil, nil, nil),
		competencies: NewCompetencyService(fakeStudents{db}, fakeCompetencies{db}, fakeStudentCompetencies{db}, nil, nil),
		exports:      NewExportService(att, "", fixedClock(now), nil),
	}
}
