package smartcontract

import (
	"github.com/cityofzion/neow3j-go/pkg/smartcontract/callflag"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/cityofzion/neow3j-go/pkg/vm/emit"
)

// Builder accumulates a sequence of contract calls into a single
// invocation script, the shape a raw `invoke_script` request or a
// Transaction Builder's script field expects.
type Builder struct {
	b *emit.Builder
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{b: emit.NewBuilder()}
}

// InvokeMethod appends a CALLT-style call to contract at hash, invoking
// method with args under the default (All) call flags.
func (b *Builder) InvokeMethod(hash util.Uint160, method string, args ...interface{}) *Builder {
	b.b.ContractCall(hash, method, callflag.All, args...)
	return b
}

// Len returns the number of bytes accumulated so far.
func (b *Builder) Len() int {
	return b.b.Len()
}

// Script returns the accumulated script. Never errors; it exists so a
// Builder can be used interchangeably with APIs that build a script
// fallibly.
func (b *Builder) Script() ([]byte, error) {
	return b.b.Bytes(), nil
}

// Reset discards any accumulated script, readying the Builder for reuse.
func (b *Builder) Reset() {
	b.b = emit.NewBuilder()
}
