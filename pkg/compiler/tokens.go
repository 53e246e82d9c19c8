package compiler

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/cityofzion/neow3j-go/pkg/smartcontract/callflag"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract/nef"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// tokenCacheSize bounds the number of distinct external-contract method
// references a single compile keeps resolved MethodToken entries for.
// A contract calling out to more distinct (hash, method) pairs than this
// just pays for a duplicate nef.MethodToken entry past the bound; it
// does not fail the build.
const tokenCacheSize = 256

// tokenCache deduplicates nef.MethodToken entries across repeated
// @ContractHash calls to the same external contract method within one
// compile, backed by the bounded LRU the rest of the reference stack
// uses for resolved-lookup caches.
type tokenCache struct {
	cache *lru.Cache
	// tokens is the NEF method-token table in first-seen order; index
	// into it is the token ID a CALLT instruction references.
	tokens []nef.MethodToken
}

func newTokenCache() *tokenCache {
	c, err := lru.New(tokenCacheSize)
	if err != nil {
		// lru.New only errors on a non-positive size, which tokenCacheSize
		// never is.
		panic(err)
	}
	return &tokenCache{cache: c}
}

type tokenKey struct {
	hash       util.Uint160
	method     string
	paramCount int
	hasReturn  bool
	flags      callflag.CallFlag
}

// intern returns the CALLT token ID for (hash, method, ...), minting a
// new nef.MethodToken entry on first sight and reusing it for every
// later call with the same key.
func (tc *tokenCache) intern(hash util.Uint160, method string, paramCount int, hasReturn bool, flags callflag.CallFlag) uint16 {
	key := tokenKey{hash, method, paramCount, hasReturn, flags}
	if v, ok := tc.cache.Get(key); ok {
		return v.(uint16)
	}
	id := uint16(len(tc.tokens))
	tc.tokens = append(tc.tokens, nef.MethodToken{
		Hash:       hash,
		Method:     method,
		ParamCount: uint16(paramCount),
		HasReturn:  hasReturn,
		CallFlag:   flags,
	})
	tc.cache.Add(key, id)
	return id
}
