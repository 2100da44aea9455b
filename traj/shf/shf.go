package shf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	hop "github.com/rmera/gohop"
)

// A Record is the state of one trajectory at one step: the step number, the
// simulated time, the kinetic and potential energies, the occupied surface
// and the electronic populations.
type Record struct {
	Step   int
	Time   float64
	Ekin   float64
	Epot   float64
	Active int
	Pops   []float64
}

//Write!
type ShfW struct {
	f         *os.File
	h         io.WriteCloser
	nstates   int
	ntraj     int
	filename  string
	writeable bool
}

func (S *ShfW) Close() {
	if S == nil {
		return
	}
	if S.writeable {
		S.h.Close()
		S.f.Close()
	}
	S.writeable = false
	return
}

// States returns the number of electronic states per record.
func (S *ShfW) States() int {
	return S.nstates
}

// Size returns the number of records (trajectories) per frame.
func (S *ShfW) Size() int {
	return S.ntraj
}

// WNext writes one frame: a record per trajectory, in trajectory order.
func (S *ShfW) WNext(recs []Record) error {
	if !S.writeable {
		return Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if recs == nil {
		return Error{NilRecords, S.filename, []string{"WNext"}, true}
	}
	if len(recs) != S.ntraj {
		return Error{fmt.Sprintf("%d records given, but %d expected", len(recs), S.ntraj), S.filename, []string{"WNext"}, true}
	}
	for i := range recs {
		r := &recs[i]
		if len(r.Pops) != S.nstates {
			return Error{fmt.Sprintf("record %d carries %d populations, but %d states expected", i, len(r.Pops), S.nstates), S.filename, []string{"WNext"}, true}
		}
		if r.Active < 0 || r.Active >= S.nstates {
			return Error{WrongFormat, S.filename, []string{"WNext"}, true}
		}
		S.h.Write([]byte(recEncode(r)))
	}
	S.h.Write([]byte("*\n"))
	return nil
}

// NewWriter opens a SHF trajectory for writing frames of ntraj records over
// nstates electronic states. The compression comes from the last letter of
// the filename (.shz for zstd, .shg for gzip, .shf for flate; anything else
// gets zstd). The header map, if given, is stored as metadata; keys and
// values must not contain '=' or newlines. Only the first compressionLevel
// is read, and it only applies to gzip and flate.
func NewWriter(name string, nstates, ntraj int, header map[string]string, compressionLevel ...int) (*ShfW, error) {
	level := 9
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if nstates <= 0 || ntraj <= 0 {
		return nil, Error{fmt.Sprintf("Senseless dimensions: %d states, %d trajectories", nstates, ntraj), name, []string{"NewWriter"}, true}
	}
	S := new(ShfW)
	var err error
	S.f, err = os.Create(name)
	if err != nil {
		return nil, err
	}
	flatewriter := func(a io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(a, level)
	}
	gzipwriter := func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, level) }
	zstdwriter := func(a io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
	var AnyNewWriter func(io.Writer) (io.WriteCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		AnyNewWriter = zstdwriter
	case 'g':
		AnyNewWriter = gzipwriter
	case 'f':
		AnyNewWriter = flatewriter
	default:
		AnyNewWriter = zstdwriter
	}
	S.h, err = AnyNewWriter(S.f)
	if err != nil {
		return nil, Error{"Can't build the compressor: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S.nstates = nstates
	S.ntraj = ntraj
	S.filename = name
	S.writeable = true
	if header != nil {
		headerstr := ""
		for k, v := range header {
			headerstr += fmt.Sprintf("%s=%v\n", k, v)
		}
		S.h.Write([]byte(headerstr))
	}
	S.h.Write([]byte(fmt.Sprintf("** nstates=%d traj=%d\n", S.nstates, S.ntraj)))
	return S, nil
}

//recEncode renders one record as a line. Floats keep the shortest exact
//representation, so a read-back returns the same float64 bit for bit.
func recEncode(r *Record) string {
	b := make([]byte, 0, 64+16*len(r.Pops))
	b = strconv.AppendInt(b, int64(r.Step), 10)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, r.Time, 'g', -1, 64)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, r.Ekin, 'g', -1, 64)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, r.Epot, 'g', -1, 64)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(r.Active), 10)
	for _, p := range r.Pops {
		b = append(b, ' ')
		b = strconv.AppendFloat(b, p, 'g', -1, 64)
	}
	b = append(b, '\n')
	return string(b)
}

//recDecode parses one record line. A nil record still gets the line checked
//for correctness, just not kept.
func recDecode(str string, r *Record, nstates int) error {
	s := strings.Fields(str)
	want := 5 + nstates
	if len(s) < want {
		return fmt.Errorf("Ill formated record line in shf: Too few fields: %s", str)
	}
	if len(s) > want {
		return fmt.Errorf("Ill formated record line in shf: Too many fields: %s", str)
	}
	step, err := strconv.Atoi(s[0])
	if err != nil {
		return fmt.Errorf("Can't parse step number (%s): %s", s[0], err.Error())
	}
	var floats [3]float64
	for i, v := range s[1:4] {
		floats[i], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("Can't parse field %d (%s): %s", i+1, v, err.Error())
		}
	}
	active, err := strconv.Atoi(s[4])
	if err != nil {
		return fmt.Errorf("Can't parse occupied surface (%s): %s", s[4], err.Error())
	}
	if active < 0 || active >= nstates {
		return fmt.Errorf("Occupied surface %d out of the %d states", active, nstates)
	}
	if r == nil {
		for _, v := range s[5:] {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return fmt.Errorf("Can't parse population (%s): %s", v, err.Error())
			}
		}
		return nil
	}
	if len(r.Pops) < nstates {
		r.Pops = make([]float64, nstates)
	} else {
		r.Pops = r.Pops[:nstates]
	}
	for i, v := range s[5:] {
		r.Pops[i], err = strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("Can't parse population %d (%s): %s", i, v, err.Error())
		}
	}
	r.Step = step
	r.Time = floats[0]
	r.Ekin = floats[1]
	r.Epot = floats[2]
	r.Active = active
	return nil
}

//Read!
type ShfR struct {
	f            *os.File
	zr           io.ReadCloser
	h            *bufio.Reader
	intermediate *bufio.Reader
	nstates      int
	ntraj        int
	filename     string
	readable     bool
}

//zstd.Decoder does not implement io.ReadCloser: its Close returns nothing.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (s zstdql) Close() error {
	s.closeql()
	return nil
}

// New opens a SHF trajectory for reading, and returns a pointer to the
// handle, a map with the metadata (or nil, if no metadata is found) and
// error or nil.
func New(name string) (*ShfR, map[string]string, error) {
	S := new(ShfR)
	S.nstates = -1
	S.ntraj = -1
	var m map[string]string
	var err error
	S.filename = name
	S.f, err = os.Open(S.filename)
	if err != nil {
		return nil, nil, err
	}
	flatereader := func(a io.Reader) (io.ReadCloser, error) {
		return flate.NewReader(a), nil
	}
	zstdreader := func(a io.Reader) (io.ReadCloser, error) {
		r, err := zstd.NewReader(a)
		if err != nil {
			return nil, err
		}
		return &zstdql{r.Close, r}, nil
	}
	gzreader := func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	var AnyNewReader func(io.Reader) (io.ReadCloser, error)
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		AnyNewReader = zstdreader
	case 'g':
		AnyNewReader = gzreader
	case 'f':
		AnyNewReader = flatereader
	default:
		AnyNewReader = zstdreader
	}
	S.intermediate = bufio.NewReader(S.f)
	S.zr, err = AnyNewReader(S.intermediate)
	if err != nil {
		return nil, nil, Error{"Can't read header: " + err.Error(), S.filename, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.zr)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{"Can't read header: " + err.Error(), S.filename, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			for _, field := range strings.Fields(str)[1:] {
				kv := strings.Split(field, "=")
				if len(kv) != 2 {
					return nil, nil, Error{"Malformed dimensions line: " + str, S.filename, []string{"New"}, true}
				}
				n, err := strconv.Atoi(kv[1])
				if err != nil {
					return nil, nil, Error{fmt.Sprintf("Can't read the dimension '%s': %s", field, err.Error()), S.filename, []string{"New"}, true}
				}
				switch kv[0] {
				case "nstates":
					S.nstates = n
				case "traj":
					S.ntraj = n
				}
			}
			break
		}
		kv := strings.Split(str, "=")
		if len(kv) != 2 {
			return nil, nil, Error{"Malformed header line: " + str, S.filename, []string{"New"}, true}
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[kv[0]] = kv[1]
	}
	if S.nstates <= 0 || S.ntraj <= 0 {
		return nil, nil, Error{fmt.Sprintf("Senseless dimensions: %d states, %d trajectories", S.nstates, S.ntraj), S.filename, []string{"New"}, true}
	}
	S.readable = true
	return S, m, nil
}

// Readable returns true if the handle is readable (if it is possible to call
// Next on it).
func (S *ShfR) Readable() bool {
	return S.readable
}

// States returns the number of electronic states per record.
func (S *ShfR) States() int {
	return S.nstates
}

// Size returns the number of records (trajectories) per frame.
func (S *ShfR) Size() int {
	return S.ntraj
}

// Next puts in recs the records for the next frame of the trajectory. A nil
// recs skips the frame, still checking it for correctness. Returns error if
// the operation is not successful. If the error implements
// hop.LastFrameError, the end of the trajectory has been reached, not an
// actual failure.
func (S *ShfR) Next(recs []Record) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	if recs != nil && len(recs) != S.ntraj {
		return Error{fmt.Sprintf("%d records given, but %d expected", len(recs), S.ntraj), S.filename, []string{"Next"}, true}
	}
	for i := 0; i < S.ntraj; i++ {
		b, err := S.h.ReadBytes('\n')
		if err != nil {
			//EOF at the first record means the trajectory just ended
			if err == io.EOF && i == 0 {
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return Error{message: err.Error(), filename: S.filename, critical: true}
		}
		var r *Record
		if recs != nil {
			r = &recs[i]
		}
		if err := recDecode(string(b[:len(b)-1]), r, S.nstates); err != nil {
			return Error{message: err.Error(), filename: S.filename, critical: true}
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return Error{WrongFormat, S.filename, []string{"Next"}, true}
	}
	return nil
}

// Close closes the object, and marks it as unreadable.
func (S *ShfR) Close() {
	if !S.readable {
		return
	}
	S.zr.Close()
	S.f.Close()
	S.readable = false
	return
}

// ReadAll opens the named trajectory and reads every frame into memory,
// returning the per-frame records and the metadata.
func ReadAll(name string) ([][]Record, map[string]string, error) {
	S, m, err := New(name)
	if err != nil {
		return nil, nil, err
	}
	var frames [][]Record
	for {
		recs := make([]Record, S.Size())
		err := S.Next(recs)
		if err != nil {
			if _, ok := err.(hop.LastFrameError); ok {
				break
			}
			S.Close()
			return nil, nil, errDecorate(err, "ReadAll")
		}
		frames = append(frames, recs)
	}
	return frames, m, nil
}

//Errors

//errDecorate is a helper function that asserts that the error implements
//hop.Error and decorates the error with the caller's name before returning
//it. If used with a non-hop.Error error, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(hop.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for SHF trajectory errors. It fullfills
//hop.Error and hop.TrajError.
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("shf file %s error: %s", err.filename, err.message)
}

//Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since E.deco is a slice, and hence a pointer itself.
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file associated to the error
func (err Error) Format() string { return "shf" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	NilRecords     = "Given nil records"
	WrongFormat    = "Wrong format in the SHF file or frame"
	EOF            = "EOF"
)

//lastFrameError implements hop.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "shf" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
