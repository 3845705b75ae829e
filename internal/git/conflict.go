package git

// StatusCode is one side of a short-format status: the first column is ours
// (index), the second theirs (work tree).
type StatusCode byte

const (
	Unmodified  StatusCode = ' '
	Modified    StatusCode = 'M'
	TypeChanged StatusCode = 'T'
	Added       StatusCode = 'A'
	Deleted     StatusCode = 'D'
	Renamed     StatusCode = 'R'
	Copied      StatusCode = 'C'
	Unmerged    StatusCode = 'U'
	Untracked   StatusCode = '?'
	Ignored     StatusCode = '!'
)

func (c StatusCode) String() string {
	return string(rune(c))
}

// ConflictRecord is a single status line. Records compare equal by value, so
// they can key a set directly.
type ConflictRecord struct {
	Ours   StatusCode
	Theirs StatusCode
	Path   string
}

func (r ConflictRecord) String() string {
	return r.Ours.String() + r.Theirs.String() + " " + r.Path
}

// DeletedByUs reports whether our side removed the file.
func (r ConflictRecord) DeletedByUs() bool {
	return r.Ours == Deleted
}

// TouchedByUs reports whether our side changed the file at all, deletion
// included.
func (r ConflictRecord) TouchedByUs() bool {
	return r.Ours != Unmodified
}

// DeletedByThem is the UD pairing: both sides touched the path and the
// incoming side resolved it by deleting.
func (r ConflictRecord) DeletedByThem() bool {
	return r.Ours == Unmerged && r.Theirs == Deleted
}
