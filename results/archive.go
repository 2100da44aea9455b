//Package results archives finished surface-hopping runs in SQLite: one row
//per run with its settings, one row per step with the ensemble populations,
//queried back by run ID.
package results

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rmera/gohop/ensemble"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	settings    TEXT NOT NULL,
	nstates     INTEGER NOT NULL,
	ntraj       INTEGER NOT NULL,
	nsteps      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS frames (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	step        INTEGER NOT NULL,
	time        REAL NOT NULL,
	populations BLOB NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_frames_run ON frames(run_id, step);
`

// An Archive keeps runs in a SQLite database, ":memory:" included.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the database at path and runs the migrations.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (A *Archive) Close() error {
	return A.db.Close()
}

//The settings are archived as JSON. The rates matrix stays out: it is
//derived data with its own provenance, not a knob.
type runSettings struct {
	Scheme            string
	Representation    string
	Dt                float64
	Substeps          int
	Boltzmann         bool
	Temperature       float64
	Decoherence       string
	ReverseFrustrated bool
	Mixing            string
	Seed              int64
	Workers           int
}

// NewRun registers a run about to produce frames and returns its ID.
func (A *Archive) NewRun(set *ensemble.Settings, nstates, ntraj int) (string, error) {
	if set == nil {
		return "", fmt.Errorf("new run: no settings given")
	}
	if nstates < 1 || ntraj < 1 {
		return "", fmt.Errorf("new run: %d states and %d trajectories make no ensemble", nstates, ntraj)
	}
	rs := runSettings{
		Scheme:            set.Scheme.String(),
		Representation:    set.Representation.String(),
		Dt:                set.Dt,
		Substeps:          set.Substeps,
		Boltzmann:         set.Boltzmann,
		Temperature:       set.Temperature,
		Decoherence:       set.Decoherence.String(),
		ReverseFrustrated: set.ReverseFrustrated,
		Mixing:            set.Mixing.String(),
		Seed:              set.Seed,
		Workers:           set.Workers,
	}
	sj, err := json.Marshal(rs)
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = A.db.Exec(
		`INSERT INTO runs (run_id, created_at, settings, nstates, ntraj, nsteps)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		id, now.Format(time.RFC3339Nano), string(sj), nstates, ntraj,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// AddFrame appends one step of ensemble-averaged populations to a run and
// bumps its step count, atomically.
func (A *Archive) AddFrame(runID string, step int, tm float64, pops []float64) error {
	if len(pops) == 0 {
		return fmt.Errorf("add frame: no populations given")
	}
	tx, err := A.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	var nstates int
	if err := tx.QueryRow(`SELECT nstates FROM runs WHERE run_id = ?`, runID).Scan(&nstates); err != nil {
		return fmt.Errorf("find run %s: %w", runID, err)
	}
	if len(pops) != nstates {
		return fmt.Errorf("add frame: %d populations for a %d-state run", len(pops), nstates)
	}
	_, err = tx.Exec(
		`INSERT INTO frames (run_id, step, time, populations) VALUES (?, ?, ?, ?)`,
		runID, step, tm, encodePops(pops),
	)
	if err != nil {
		return fmt.Errorf("insert frame: %w", err)
	}
	if _, err := tx.Exec(`UPDATE runs SET nsteps = nsteps + 1 WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("count frame: %w", err)
	}
	return tx.Commit()
}

// A Run is the archived description of one ensemble run.
type Run struct {
	ID        string
	CreatedAt time.Time
	Settings  string //JSON, as stored
	NStates   int
	NTraj     int
	NSteps    int
}

// Run retrieves one run by ID.
func (A *Archive) Run(id string) (*Run, error) {
	var rec Run
	var createdStr string
	err := A.db.QueryRow(
		`SELECT run_id, created_at, settings, nstates, ntraj, nsteps
		 FROM runs WHERE run_id = ?`, id,
	).Scan(&rec.ID, &createdStr, &rec.Settings, &rec.NStates, &rec.NTraj, &rec.NSteps)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return &rec, nil
}

// Runs lists every archived run, most recent first.
func (A *Archive) Runs() ([]*Run, error) {
	rows, err := A.db.Query(
		`SELECT run_id, created_at, settings, nstates, ntraj, nsteps
		 FROM runs ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var recs []*Run
	for rows.Next() {
		var rec Run
		var createdStr string
		if err := rows.Scan(&rec.ID, &createdStr, &rec.Settings, &rec.NStates, &rec.NTraj, &rec.NSteps); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// A Frame is one archived step of a run.
type Frame struct {
	Step int
	Time float64
	Pops []float64
}

// Frames retrieves the population history of a run in step order.
func (A *Archive) Frames(runID string) ([]Frame, error) {
	rows, err := A.db.Query(
		`SELECT step, time, populations FROM frames WHERE run_id = ? ORDER BY step ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()
	var frames []Frame
	for rows.Next() {
		var fr Frame
		var blob []byte
		if err := rows.Scan(&fr.Step, &fr.Time, &blob); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		fr.Pops = decodePops(blob)
		frames = append(frames, fr)
	}
	return frames, rows.Err()
}

func encodePops(p []float64) []byte {
	buf := make([]byte, len(p)*8)
	for i, f := range p {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

func decodePops(b []byte) []float64 {
	p := make([]float64, len(b)/8)
	for i := range p {
		p[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return p
}
