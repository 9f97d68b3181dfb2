package presign_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPresignSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Presignature Suite")
}
