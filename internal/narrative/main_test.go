package narrative

import (
	"testing"

	"go.uber.org/goleak"
)

// The genai client's opencensus dependency starts a stats worker in init
// that lives for the whole process.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}
