package tracing

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/sarchlab/streamsim/sim"
	"github.com/tebeka/atexit"
)

// SQLiteTraceWriter is a writer that writes trace data to a SQLite database.
type SQLiteTraceWriter struct {
	*sql.DB

	statement      *sql.Stmt
	delayStatement *sql.Stmt

	dbName            string
	tasksToWriteToDB  []Task
	delaysToWriteToDB []DelayEvent
	batchSize         int
}

// NewSQLiteTraceWriter creates a new SQLiteTraceWriter. The path is the
// database file name without the .sqlite3 suffix; an empty path picks a
// unique name.
func NewSQLiteTraceWriter(path string) *SQLiteTraceWriter {
	w := &SQLiteTraceWriter{
		dbName:    path,
		batchSize: 100000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// FileName returns the database file name.
func (t *SQLiteTraceWriter) FileName() string {
	return t.dbName + ".sqlite3"
}

// Init creates the database and the tables.
func (t *SQLiteTraceWriter) Init() {
	t.createDatabase()
	t.createTables()
	t.prepareStatements()
}

// Write buffers a task, writing a batch once the buffer is full.
func (t *SQLiteTraceWriter) Write(task Task) {
	t.tasksToWriteToDB = append(t.tasksToWriteToDB, task)
	if len(t.tasksToWriteToDB) >= t.batchSize {
		t.Flush()
	}
}

// WriteDelay buffers a delay event, writing a batch once the buffer is full.
func (t *SQLiteTraceWriter) WriteDelay(delay DelayEvent) {
	t.delaysToWriteToDB = append(t.delaysToWriteToDB, delay)
	if len(t.delaysToWriteToDB) >= t.batchSize {
		t.Flush()
	}
}

// Flush writes all the buffered tasks and delay events to the database.
func (t *SQLiteTraceWriter) Flush() {
	if t.DB == nil {
		return
	}

	if len(t.tasksToWriteToDB) == 0 && len(t.delaysToWriteToDB) == 0 {
		return
	}

	t.mustExecute("BEGIN TRANSACTION")
	defer t.mustExecute("COMMIT TRANSACTION")

	for _, task := range t.tasksToWriteToDB {
		_, err := t.statement.Exec(
			task.ID,
			task.ParentID,
			task.Kind,
			task.What,
			task.Location,
			uint64(task.StartTime),
			uint64(task.EndTime),
		)
		if err != nil {
			panic(fmt.Errorf("writing task %s: %w", task.ID, err))
		}
	}

	for _, delay := range t.delaysToWriteToDB {
		_, err := t.delayStatement.Exec(
			delay.TaskID,
			delay.Kind,
			delay.What,
			delay.Source,
			uint64(delay.Time),
			delay.Cycles,
		)
		if err != nil {
			panic(fmt.Errorf("writing delay of task %s: %w", delay.TaskID, err))
		}
	}

	t.tasksToWriteToDB = nil
	t.delaysToWriteToDB = nil
}

func (t *SQLiteTraceWriter) createDatabase() {
	if t.dbName == "" {
		t.dbName = "streamsim_trace_" + xid.New().String()
	}

	filename := t.FileName()
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	t.DB = db
}

func (t *SQLiteTraceWriter) createTables() {
	t.mustExecute(`
		create table trace
		(
			task_id    varchar(200) not null,
			parent_id  varchar(200),
			kind       varchar(100),
			what       varchar(100),
			location   varchar(100),
			start_time integer not null,
			end_time   integer default 0
		);
	`)

	for _, col := range []string{
		"task_id", "parent_id", "kind", "what", "location",
		"start_time", "end_time",
	} {
		t.mustExecute(fmt.Sprintf(
			"create index trace_%s_index on trace (%s);", col, col))
	}

	t.mustExecute(`
		create table delay
		(
			task_id varchar(200),
			kind    varchar(100),
			what    varchar(200),
			source  varchar(200),
			time    integer not null,
			cycles  integer not null
		);
	`)

	t.mustExecute(`create index delay_source_index on delay (source);`)
}

func (t *SQLiteTraceWriter) prepareStatements() {
	stmt, err := t.Prepare(`INSERT INTO trace VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}
	t.statement = stmt

	stmt, err = t.Prepare(`INSERT INTO delay VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		panic(err)
	}
	t.delayStatement = stmt
}

func (t *SQLiteTraceWriter) mustExecute(query string) sql.Result {
	res, err := t.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}
	return res
}

// SQLiteTraceReader reads a trace database written by SQLiteTraceWriter.
type SQLiteTraceReader struct {
	*sql.DB

	filename string
}

// NewSQLiteTraceReader creates a new SQLiteTraceReader.
func NewSQLiteTraceReader(filename string) *SQLiteTraceReader {
	return &SQLiteTraceReader{filename: filename}
}

// Init establishes a connection to the database.
func (r *SQLiteTraceReader) Init() {
	db, err := sql.Open("sqlite3", r.filename)
	if err != nil {
		panic(err)
	}

	r.DB = db
}

// ListLocations returns all the locations that have tasks.
func (r *SQLiteTraceReader) ListLocations() []string {
	rows, err := r.Query(
		"SELECT DISTINCT location FROM trace ORDER BY location")
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			panic(err)
		}
		locations = append(locations, loc)
	}

	return locations
}

// TaskQuery selects tasks. Empty fields are not filtered on.
type TaskQuery struct {
	ID       string
	ParentID string
	Kind     string
	What     string
	Location string

	// Only tasks overlapping [StartTime, EndTime] are returned when
	// EnableTimeRange is set.
	EnableTimeRange    bool
	StartTime, EndTime sim.VTimeInCycle
}

// ListTasks returns the tasks that match the query, ordered by start time.
func (r *SQLiteTraceReader) ListTasks(query TaskQuery) []Task {
	sqlStr, args := r.prepareTaskQueryStr(query)

	rows, err := r.Query(sqlStr, args...)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		var start, end uint64

		err := rows.Scan(
			&t.ID, &t.ParentID, &t.Kind, &t.What, &t.Location,
			&start, &end)
		if err != nil {
			panic(err)
		}

		t.StartTime = sim.VTimeInCycle(start)
		t.EndTime = sim.VTimeInCycle(end)
		tasks = append(tasks, t)
	}

	return tasks
}

// ListDelays returns the delay events recorded at the given source. An empty
// source returns all of them.
func (r *SQLiteTraceReader) ListDelays(source string) []DelayEvent {
	sqlStr := "SELECT task_id, kind, what, source, time, cycles FROM delay"
	var args []interface{}

	if source != "" {
		sqlStr += " WHERE source = ?"
		args = append(args, source)
	}

	sqlStr += " ORDER BY time"

	rows, err := r.Query(sqlStr, args...)
	if err != nil {
		panic(err)
	}
	defer rows.Close()

	delays := []DelayEvent{}
	for rows.Next() {
		var d DelayEvent
		var time uint64

		err := rows.Scan(&d.TaskID, &d.Kind, &d.What, &d.Source, &time,
			&d.Cycles)
		if err != nil {
			panic(err)
		}

		d.Time = sim.VTimeInCycle(time)
		delays = append(delays, d)
	}

	return delays
}

func (r *SQLiteTraceReader) prepareTaskQueryStr(
	query TaskQuery,
) (string, []interface{}) {
	sqlStr := `
		SELECT task_id, parent_id, kind, what, location, start_time, end_time
		FROM trace
	`

	var conds []string
	var args []interface{}

	addCond := func(col, value string) {
		if value == "" {
			return
		}

		conds = append(conds, col+" = ?")
		args = append(args, value)
	}

	addCond("task_id", query.ID)
	addCond("parent_id", query.ParentID)
	addCond("kind", query.Kind)
	addCond("what", query.What)
	addCond("location", query.Location)

	if query.EnableTimeRange {
		conds = append(conds, "end_time >= ?", "start_time <= ?")
		args = append(args, uint64(query.StartTime), uint64(query.EndTime))
	}

	if len(conds) > 0 {
		sqlStr += " WHERE " + strings.Join(conds, " AND ")
	}

	sqlStr += " ORDER BY start_time, task_id"

	return sqlStr, args
}
