package report_test

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/apexsim/apex/asm"
	"github.com/apexsim/apex/config"
	"github.com/apexsim/apex/core"
	"github.com/apexsim/apex/pipeline"
	"github.com/apexsim/apex/report"
)

func TestReport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Report Suite")
}

var _ = Describe("Cycle", func() {
	It("prints a header and one line per stage", func() {
		program, err := asm.Parse(strings.NewReader("MOVC R1,#1\nHALT\n"))
		Expect(err).NotTo(HaveOccurred())

		c := core.New(pipeline.VariantForwarding, program, config.Default())
		c.Tick()

		var buf bytes.Buffer
		report.Cycle(&buf, c.Engine, c.Engine.Clock())

		out := buf.String()
		Expect(out).To(ContainSubstring("Clock Cycle #: 1"))
		Expect(out).To(ContainSubstring("Fetch"))
		Expect(out).To(ContainSubstring("Writeback"))
	})
})

var _ = Describe("FinalState", func() {
	It("prints register and memory tables", func() {
		program, err := asm.Parse(strings.NewReader("MOVC R1,#42\nHALT\n"))
		Expect(err).NotTo(HaveOccurred())

		c := core.New(pipeline.VariantForwarding, program, config.Default())
		c.Run(0)

		var buf bytes.Buffer
		report.FinalState(&buf, c, 4, 4)

		out := buf.String()
		Expect(out).To(ContainSubstring("ARCHITECTURAL REGISTER FILE"))
		Expect(out).To(ContainSubstring("DATA MEMORY"))
		Expect(out).To(ContainSubstring("REG[ 1]"))
	})
})
