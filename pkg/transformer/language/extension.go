package language

// DefaultExtension is returned by ExtensionFor for labels outside the table.
const DefaultExtension = ".txt"

var languageExtensions = map[string]string{
	"JavaScript": ".js",
	"TypeScript": ".ts",
	"Python":     ".py",
	"Java":       ".java",
	"C++":        ".cpp",
	"C":          ".c",
	"C#":         ".cs",
	"Go":         ".go",
	"Rust":       ".rs",
	"PHP":        ".php",
	"Ruby":       ".rb",
	"Swift":      ".swift",
	"Kotlin":     ".kt",
	"Scala":      ".scala",
	"Perl":       ".pl",
	"Shell":      ".sh",
	"PowerShell": ".ps1",
	"SQL":        ".sql",
	"R":          ".r",
	"MATLAB":     ".m",
	"HTML":       ".html",
	"CSS":        ".css",
}

// ExtensionFor returns the canonical file extension (with leading dot) for a
// language label. Lookup is exact and case-sensitive; "python" is not "Python".
func ExtensionFor(language string) string {
	if ext, ok := languageExtensions[language]; ok {
		return ext
	}
	return DefaultExtension
}
