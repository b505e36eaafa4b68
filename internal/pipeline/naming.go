package pipeline

import (
	"fmt"

	"github.com/himanishpuri/StemForge/pkg/utils"
)

// OutputDirName derives the per-track output directory name:
// title, full key label and truncated integer BPM joined by underscores,
// e.g. "Song_D minor_128". BPM is floored, not rounded. The key label keeps
// its embedded space; filesystem-illegal characters are replaced.
func OutputDirName(title, keyLabel string, bpm float64) string {
	return utils.SanitizeFilename(fmt.Sprintf("%s_%s_%d", title, keyLabel, int(bpm)))
}
