package sqlite

import "strings"

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// SQLite reports partial unique index violations by the indexed column list
// ("UNIQUE constraint failed: assignments.bed_id"), which lets us tell a
// taken bed apart from a double-placed resident.
func isOpenBedViolation(err error) bool {
	return isUniqueViolation(err) && strings.Contains(err.Error(), "assignments.bed_id")
}

func isOpenResidentViolation(err error) bool {
	return isUniqueViolation(err) && strings.Contains(err.Error(), "assignments.resident_id")
}
