package keyshare_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestKeyshareSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Keyshare Core Suite")
}
