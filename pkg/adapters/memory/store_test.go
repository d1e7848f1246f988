package memory_test

import (
	"testing"

	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}

func TestMemoryResponseStore_Contract(t *testing.T) {
	ports.RunResponseStoreContract(t, memory.NewResponseStore())
}
