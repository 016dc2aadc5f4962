package synthesis

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	fenceOpenRe  = regexp.MustCompile("(?m)^```(?:python)?\\s*\n")
	fenceCloseRe = regexp.MustCompile("(?m)^```\\s*$")

	mobjectsGroupRe = regexp.MustCompile(`VGroup\(\*self\.mobjects\)`)
	mobjectsAnyRe   = regexp.MustCompile(`VGroup\([^)]*self\.mobjects[^)]*\)`)

	createGroupRe = regexp.MustCompile(`self\.play\(Create\(([a-zA-Z_][a-zA-Z0-9_]*(?:_group|_objects|Group|VGroup)[^)]*)\)\)`)
	writeGroupRe  = regexp.MustCompile(`self\.play\(Write\(([a-zA-Z_][a-zA-Z0-9_]*(?:_group|_objects|Group|VGroup)[^)]*)\)\)`)
	fadeInGroupRe = regexp.MustCompile(`self\.play\(FadeIn\(([a-zA-Z_][a-zA-Z0-9_]*(?:_group|_objects|Group|VGroup)[^)]*)\)\)`)

	normalizeRe = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\.normalize\(\)`)

	classSceneRe = regexp.MustCompile(`class\s+(\w+)\s*\(\s*Scene\s*\):`)
	constructRe  = regexp.MustCompile(`(def construct\(self\):\s*\n)`)
)

// colorReplacements maps color names the model likes to emit but Manim does
// not define to safe equivalents.
var colorReplacements = []struct{ invalid, replacement string }{
	{"BROWN", `"#8B4513"`},
	{"CYAN", "TEAL"},
	{"LIME", "GREEN"},
	{"NAVY", "BLUE"},
	{"SILVER", "LIGHT_GRAY"},
	{"OLIVE", "YELLOW"},
	{"AQUA", "TEAL"},
	{"FUCHSIA", "PINK"},
}

// cleanScript strips markdown fencing from a model response and rewrites the
// known failure patterns the model keeps producing.
func cleanScript(raw string) string {
	script := fenceOpenRe.ReplaceAllString(raw, "")
	script = fenceCloseRe.ReplaceAllString(script, "")
	script = strings.TrimSpace(script)
	return fixCommonIssues(script)
}

// fixCommonIssues rewrites patterns that reliably crash Manim: animating
// whole groups, VGroup over self.mobjects, the nonexistent .normalize(), and
// undefined color names.
func fixCommonIssues(script string) string {
	script = mobjectsGroupRe.ReplaceAllString(script,
		`Group(*[mob for mob in self.mobjects if hasattr(mob, "animate")])`)
	script = mobjectsAnyRe.ReplaceAllString(script, "Group()")

	script = createGroupRe.ReplaceAllString(script, `self.play(*[Create(obj) for obj in $1])`)
	script = writeGroupRe.ReplaceAllString(script, `self.play(*[Write(obj) for obj in $1])`)
	script = fadeInGroupRe.ReplaceAllString(script, `self.play(*[FadeIn(obj) for obj in $1])`)

	script = normalizeRe.ReplaceAllString(script, `($1 / np.linalg.norm($1))`)
	if strings.Contains(script, "np.linalg.norm") && !strings.Contains(script, "import numpy as np") {
		script = "import numpy as np\n" + script
	}

	for _, cr := range colorReplacements {
		re := regexp.MustCompile(`color=` + cr.invalid + `\b`)
		script = re.ReplaceAllString(script, "color="+cr.replacement)
	}

	return script
}

var requiredPatterns = []struct {
	re     *regexp.Regexp
	reason string
}{
	{regexp.MustCompile(`from manim import \*`), "missing manim import (from manim import *)"},
	{regexp.MustCompile(`class \w+\((?:Voiceover)?Scene\):`), "missing Scene class definition"},
	{regexp.MustCompile(`def construct\(self\):`), "missing construct method"},
}

// validateStructure checks the candidate for the structure a runnable scene
// must have. It returns the first failure reason, or ok=true.
func validateStructure(script string) (reason string, ok bool) {
	for _, p := range requiredPatterns {
		if !p.re.MatchString(script) {
			return p.reason, false
		}
	}
	return "", true
}

// addBasicVoiceover deterministically converts a validated Scene script into
// a VoiceoverScene: imports, class base, and speech service initialization.
// Used when the model transformation fails.
func addBasicVoiceover(script, voice string) string {
	script = ensureVoiceoverImports(script)
	script = classSceneRe.ReplaceAllString(script, `class $1(VoiceoverScene):`)

	speechInit := fmt.Sprintf(`        self.set_speech_service(
            AzureService(
                voice=%q,
                style="friendly"
            )
        )

`, voice)
	script = constructRe.ReplaceAllString(script, "$1"+speechInit)
	return script
}

func ensureVoiceoverImports(script string) string {
	if strings.Contains(script, "from manim_voiceover") {
		return script
	}
	imports := "from manim_voiceover import VoiceoverScene\nfrom manim_voiceover.services.azure import AzureService"
	if strings.Contains(script, "from manim import *") {
		return strings.Replace(script, "from manim import *", "from manim import *\n"+imports, 1)
	}
	return "from manim import *\n" + imports + "\n\n" + script
}
