package params_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twakeham/pathfinder/pkg/params"
)

var _ = Describe("Params", func() {
	Describe("Clamp", func() {
		It("forces temperature and top_p into [0, 1]", func() {
			p := params.Params{Temperature: 2.5, TopP: -0.3, MaxTokens: 512}.Clamp()

			Expect(p.Temperature).To(Equal(1.0))
			Expect(p.TopP).To(Equal(0.0))
		})

		It("forces max tokens into [1, 2048]", func() {
			Expect(params.Params{MaxTokens: 0}.Clamp().MaxTokens).To(Equal(1))
			Expect(params.Params{MaxTokens: 99999}.Clamp().MaxTokens).To(Equal(2048))
		})

		It("leaves in-range values alone", func() {
			p := params.Defaults().Clamp()
			Expect(p).To(Equal(params.Defaults()))
		})
	})

	Describe("Matches", func() {
		It("accepts float drift below the tolerance", func() {
			a := params.Params{Temperature: 0.7, TopP: 1.0, MaxTokens: 512}
			b := params.Params{Temperature: 0.7 + 1e-9, TopP: 1.0 - 1e-9, MaxTokens: 512}

			Expect(a.Matches(b)).To(BeTrue())
		})

		It("rejects float drift above the tolerance", func() {
			a := params.Params{Temperature: 0.7, TopP: 1.0, MaxTokens: 512}
			b := params.Params{Temperature: 0.71, TopP: 1.0, MaxTokens: 512}

			Expect(a.Matches(b)).To(BeFalse())
		})

		It("requires exact max token equality", func() {
			a := params.Params{Temperature: 0.7, TopP: 1.0, MaxTokens: 512}
			b := params.Params{Temperature: 0.7, TopP: 1.0, MaxTokens: 513}

			Expect(a.Matches(b)).To(BeFalse())
		})
	})
})

var _ = Describe("Presets", func() {
	It("classifies each named preset by its own values", func() {
		for _, preset := range params.Presets() {
			Expect(params.Classify(preset.Params)).To(Equal(preset.Name))
		}
	})

	It("classifies the defaults as Balanced", func() {
		Expect(params.Classify(params.Defaults())).To(Equal("Balanced"))
	})

	It("classifies anything else as custom", func() {
		p := params.Params{Temperature: 0.33, TopP: 0.77, MaxTokens: 100}
		Expect(params.Classify(p)).To(Equal(params.CustomPreset))
	})

	It("applies a preset by overwriting all three knobs", func() {
		presets := params.Presets()
		p := params.Apply(presets[0])

		Expect(p).To(Equal(presets[0].Params))
	})
})
