package scripture

import (
	"fmt"
	"regexp"
	"strings"
)

// Book describes a canonical book for navigation.
type Book struct {
	ID       string
	Name     string
	Chapters int
}

// Books lists the canon in order, Old Testament first.
var Books = []Book{
	{"genesis", "Genesis", 50},
	{"exodus", "Exodus", 40},
	{"leviticus", "Leviticus", 27},
	{"numbers", "Numbers", 36},
	{"deuteronomy", "Deuteronomy", 34},
	{"joshua", "Joshua", 24},
	{"judges", "Judges", 21},
	{"ruth", "Ruth", 4},
	{"1samuel", "1 Samuel", 31},
	{"2samuel", "2 Samuel", 24},
	{"1kings", "1 Kings", 22},
	{"2kings", "2 Kings", 25},
	{"1chronicles", "1 Chronicles", 29},
	{"2chronicles", "2 Chronicles", 36},
	{"ezra", "Ezra", 10},
	{"nehemiah", "Nehemiah", 13},
	{"esther", "Esther", 10},
	{"job", "Job", 42},
	{"psalms", "Psalms", 150},
	{"proverbs", "Proverbs", 31},
	{"ecclesiastes", "Ecclesiastes", 12},
	{"songofsolomon", "Song of Solomon", 8},
	{"isaiah", "Isaiah", 66},
	{"jeremiah", "Jeremiah", 52},
	{"lamentations", "Lamentations", 5},
	{"ezekiel", "Ezekiel", 48},
	{"daniel", "Daniel", 12},
	{"hosea", "Hosea", 14},
	{"joel", "Joel", 3},
	{"amos", "Amos", 9},
	{"obadiah", "Obadiah", 1},
	{"jonah", "Jonah", 4},
	{"micah", "Micah", 7},
	{"nahum", "Nahum", 3},
	{"habakkuk", "Habakkuk", 3},
	{"zephaniah", "Zephaniah", 3},
	{"haggai", "Haggai", 2},
	{"zechariah", "Zechariah", 14},
	{"malachi", "Malachi", 4},
	{"matthew", "Matthew", 28},
	{"mark", "Mark", 16},
	{"luke", "Luke", 24},
	{"john", "John", 21},
	{"acts", "Acts", 28},
	{"romans", "Romans", 16},
	{"1corinthians", "1 Corinthians", 16},
	{"2corinthians", "2 Corinthians", 13},
	{"galatians", "Galatians", 6},
	{"ephesians", "Ephesians", 6},
	{"philippians", "Philippians", 4},
	{"colossians", "Colossians", 4},
	{"1thessalonians", "1 Thessalonians", 5},
	{"2thessalonians", "2 Thessalonians", 3},
	{"1timothy", "1 Timothy", 6},
	{"2timothy", "2 Timothy", 4},
	{"titus", "Titus", 3},
	{"philemon", "Philemon", 1},
	{"hebrews", "Hebrews", 13},
	{"james", "James", 5},
	{"1peter", "1 Peter", 5},
	{"2peter", "2 Peter", 3},
	{"1john", "1 John", 5},
	{"2john", "2 John", 1},
	{"3john", "3 John", 1},
	{"jude", "Jude", 1},
	{"revelation", "Revelation", 22},
}

// BookByName matches on id or display name, case-insensitively.
func BookByName(name string) (Book, bool) {
	for _, b := range Books {
		if strings.EqualFold(b.Name, name) || strings.EqualFold(b.ID, name) {
			return b, true
		}
	}
	return Book{}, false
}

// bookCodes maps lowercased book names to the three-letter passage codes used
// by the API.Bible passage endpoints.
var bookCodes = map[string]string{
	"genesis": "GEN", "exodus": "EXO", "leviticus": "LEV", "numbers": "NUM",
	"deuteronomy": "DEU", "joshua": "JOS", "judges": "JDG", "ruth": "RUT",
	"1 samuel": "1SA", "2 samuel": "2SA", "1 kings": "1KI", "2 kings": "2KI",
	"1 chronicles": "1CH", "2 chronicles": "2CH", "ezra": "EZR", "nehemiah": "NEH",
	"esther": "EST", "job": "JOB", "psalms": "PSA", "psalm": "PSA", "proverbs": "PRO",
	"ecclesiastes": "ECC", "song of solomon": "SNG", "isaiah": "ISA", "jeremiah": "JER",
	"lamentations": "LAM", "ezekiel": "EZK", "daniel": "DAN", "hosea": "HOS",
	"joel": "JOL", "amos": "AMO", "obadiah": "OBA", "jonah": "JON", "micah": "MIC",
	"nahum": "NAM", "habakkuk": "HAB", "zephaniah": "ZEP", "haggai": "HAG",
	"zechariah": "ZEC", "malachi": "MAL",
	"matthew": "MAT", "mark": "MRK", "luke": "LUK", "john": "JHN", "acts": "ACT",
	"romans": "ROM", "1 corinthians": "1CO", "2 corinthians": "2CO", "galatians": "GAL",
	"ephesians": "EPH", "philippians": "PHP", "colossians": "COL",
	"1 thessalonians": "1TH", "2 thessalonians": "2TH", "1 timothy": "1TI", "2 timothy": "2TI",
	"titus": "TIT", "philemon": "PHM", "hebrews": "HEB", "james": "JAS",
	"1 peter": "1PE", "2 peter": "2PE", "1 john": "1JN", "2 john": "2JN", "3 john": "3JN",
	"jude": "JUD", "revelation": "REV",
}

// Supports "John 3:16", "Genesis 1:1-5", "Numbers 1-36" and bare chapters.
var referencePattern = regexp.MustCompile(`^(\d?\s?[a-zA-Z\s]+)\s+(\d+)(?:[:](\d+)(?:-(\d+))?|[-](\d+))?$`)

// PassageID converts a human reference to an API.Bible passage id, for example
// "John 3:16" becomes "JHN.3.16" and "Genesis 1:1-5" becomes
// "GEN.1.1-GEN.1.5". References it cannot parse are returned unchanged so the
// remote API produces the error message.
func PassageID(reference string) string {
	m := referencePattern.FindStringSubmatch(strings.TrimSpace(reference))
	if m == nil {
		return reference
	}

	book := strings.ToLower(strings.TrimSpace(m[1]))
	startChapter, startVerse, endVerse, endChapter := m[2], m[3], m[4], m[5]

	code, ok := bookCodes[book]
	if !ok {
		code = strings.ToUpper(book)
		if len(code) > 3 {
			code = code[:3]
		}
	}

	switch {
	case endChapter != "":
		return fmt.Sprintf("%s.%s-%s.%s", code, startChapter, code, endChapter)
	case startVerse != "" && endVerse != "":
		return fmt.Sprintf("%s.%s.%s-%s.%s.%s", code, startChapter, startVerse, code, startChapter, endVerse)
	case startVerse != "":
		return fmt.Sprintf("%s.%s.%s", code, startChapter, startVerse)
	default:
		return fmt.Sprintf("%s.%s", code, startChapter)
	}
}
