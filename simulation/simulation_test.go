package simulation

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/esmlab/coupler/coupling"
	"github.com/esmlab/coupler/dump"
	"github.com/esmlab/coupler/stream"
)

// captureSink keeps every emitted record for inspection.
type captureSink struct {
	records []stream.Record
}

func (c *captureSink) Emit(r stream.Record) {
	copied := r
	copied.Values = append([]float64(nil), r.Values...)
	c.records = append(c.records, copied)
}

var _ = Describe("Simulation", func() {
	var (
		cfg  *coupling.Config
		sink *captureSink
	)

	BeforeEach(func() {
		var err error

		cfg, err = coupling.Parse([]byte(`
run_length: 12

grids:
  - name: g
    size: 2

components:
  - name: ocean
    rate: 3
    grid: g
  - name: ice
    rate: 3
    grid: g

transfers:
  - name: sst
    method: mean
    producer: ocean
    consumers: [ice]

streams:
  - name: daily
    window: 2
    rate: 3
    quantities:
      - name: sst_out
        units: K
        grid: g
        methods: [sum]
`))
		Expect(err).ToNot(HaveOccurred())

		sink = &captureSink{}
	})

	It("should build registry and streams from a configuration", func() {
		s, err := MakeBuilder().WithConfig(cfg).WithSink(sink).Build()

		Expect(err).ToNot(HaveOccurred())
		Expect(s.Registry().Transfers()).To(Equal([]string{"sst"}))
		Expect(s.Streams()).To(Equal([]string{"daily"}))

		_, ok := s.Stream("daily")
		Expect(ok).To(BeTrue())
	})

	It("should route exchanges and flush streams", func() {
		s, err := MakeBuilder().WithConfig(cfg).WithSink(sink).Build()
		Expect(err).ToNot(HaveOccurred())

		reg := s.Registry()
		st, _ := s.Stream("daily")

		Expect(reg.Set("sst", []float64{280, 281})).To(Succeed())

		values, err := reg.Get("sst", "ice")
		Expect(err).ToNot(HaveOccurred())
		Expect(values).To(Equal([]float64{280, 281}))

		Expect(st.UpdateRecord("sst_out", values)).To(Succeed())
		Expect(st.UpdateRecord("sst_out", []float64{1, 1})).To(Succeed())

		Expect(sink.records).To(HaveLen(1))
		Expect(sink.records[0].Values).To(Equal([]float64{281, 282}))
		Expect(sink.records[0].Timestamp).To(Equal(int64(6)))
	})

	It("should checkpoint and resume from the dump", func() {
		dir := GinkgoT().TempDir()
		dumpPath := filepath.Join(dir, "run")

		s, err := MakeBuilder().
			WithConfig(cfg).
			WithSink(sink).
			WithDump(dumpPath).
			Build()
		Expect(err).ToNot(HaveOccurred())

		Expect(s.Registry().Set("sst", []float64{280, 281})).To(Succeed())
		s.Checkpoint(3)
		Expect(s.Registry().Set("sst", []float64{290, 291})).To(Succeed())
		s.Finalise(6)

		resumed, err := MakeBuilder().
			WithConfig(cfg).
			WithSink(sink).
			WithResumeFrom(dumpPath, dump.Latest).
			Build()
		Expect(err).ToNot(HaveOccurred())

		values, err := resumed.Registry().Get("sst", "ice")
		Expect(err).ToNot(HaveOccurred())
		Expect(values).To(Equal([]float64{290, 291}))
	})

	It("should save and restore stream windows mid-run", func() {
		dir := GinkgoT().TempDir()
		statePath := filepath.Join(dir, "streams.json")

		s, err := MakeBuilder().WithConfig(cfg).WithSink(sink).Build()
		Expect(err).ToNot(HaveOccurred())

		st, _ := s.Stream("daily")
		Expect(st.UpdateRecord("sst_out", []float64{1, 2})).To(Succeed())

		Expect(s.Save(statePath)).To(Succeed())

		dumpPath := filepath.Join(dir, "run")
		writer := dump.NewWriter(dumpPath)
		writer.CreateQuantity("sst")
		writer.Append("sst", []float64{280, 281}, 3)
		writer.Flush()

		resumed, err := MakeBuilder().
			WithConfig(cfg).
			WithSink(sink).
			WithResumeFrom(dumpPath, dump.Latest).
			WithResumeStreamState(statePath).
			Build()
		Expect(err).ToNot(HaveOccurred())

		resumedStream, _ := resumed.Stream("daily")
		Expect(resumedStream.UpdateRecord("sst_out", []float64{10, 20})).
			To(Succeed())

		Expect(sink.records).To(HaveLen(1))
		Expect(sink.records[0].Values).To(Equal([]float64{11, 22}))
	})
})
