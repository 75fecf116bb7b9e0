package generate

import (
	"fmt"
	"strings"
)

const readmeTemplate = `# %s-%d

## Summary
This repository implements a single-page application based on the provided brief: %s

## Setup
1. Clone the repository.
2. Open ` + "`index.html`" + ` in a browser or visit the published pages URL.

## Usage
Visit the pages URL to interact with the app. The app fulfills the following requirements:
%s

## Code Explanation
The application is implemented in ` + "`index.html`" + ` with inline CSS and JavaScript to meet the brief's requirements.

## License
MIT License`

// BuildReadme derives the repository README from the brief, the check
// descriptions and the task/round identifiers.
func BuildReadme(task string, round int, brief string, checks []string) string {
	lines := make([]string, len(checks))
	for i, check := range checks {
		lines[i] = "- " + check
	}
	return fmt.Sprintf(readmeTemplate, task, round, brief, strings.Join(lines, "\n"))
}
