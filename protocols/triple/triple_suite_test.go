package triple_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTripleSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Triple Generation Suite")
}
