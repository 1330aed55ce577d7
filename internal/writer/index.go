package writer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aidanlsb/labnotes/internal/atomicfile"
	"github.com/aidanlsb/labnotes/internal/dates"
)

// ProjectsHeading is the index.md section new projects are listed under.
const ProjectsHeading = "## Projects\n\n"

// addToIndex inserts a link to the new project directly below the projects
// heading of index.md. A missing index.md, or one without the heading, is
// left alone.
func addToIndex(indexPath, title, slug, projectType string, now time.Time) (bool, error) {
	if _, err := os.Stat(indexPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	added := false
	err := atomicfile.Update(indexPath, func(content string) (string, error) {
		i := strings.Index(content, ProjectsHeading)
		if i < 0 {
			return content, nil
		}
		at := i + len(ProjectsHeading)
		entry := IndexEntry(title, slug, projectType, now)
		added = true
		return content[:at] + entry + content[at:], nil
	})
	return added, err
}

// IndexEntry formats the index.md line for a project.
func IndexEntry(title, slug, projectType string, now time.Time) string {
	return fmt.Sprintf("- [%s](projects/%s/project.md) - %s - %s\n", title, slug, projectType, dates.Format(now))
}
