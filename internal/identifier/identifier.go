package identifier

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// BranchCode derives the 3-letter code embedded in appointment numbers from a
// branch name: the first three letters, uppercased. Shorter names are padded
// with 'X'.
func BranchCode(branchName string) string {
	var letters []rune
	for _, r := range branchName {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}

// AppointmentNumber formats <branch code><YYMMDD><4-digit seq>,
// e.g. GEN2405010001 for the first booking of 2024-05-01 at "General".
func AppointmentNumber(branchCode string, day time.Time, seq int64) string {
	return fmt.Sprintf("%s%s%04d", strings.ToUpper(branchCode), day.Format("060102"), seq)
}

// PatientNumber formats PAT<4-digit seq>, e.g. PAT0042.
func PatientNumber(seq int64) string {
	return fmt.Sprintf("PAT%04d", seq)
}
