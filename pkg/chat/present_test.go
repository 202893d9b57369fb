package chat_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twakeham/pathfinder/pkg/chat"
)

// upperRenderer stands in for the markdown collaborator.
type upperRenderer struct{}

func (upperRenderer) Render(text string) (string, error) {
	return "<" + text + ">", nil
}

type failingRenderer struct{}

func (failingRenderer) Render(string) (string, error) {
	return "", errors.New("renderer broke")
}

var _ = Describe("Present", func() {
	var renderer chat.Renderer

	BeforeEach(func() {
		renderer = upperRenderer{}
	})

	Context("with no turns", func() {
		It("returns the explicit empty state", func() {
			transcript, err := chat.Present(nil, false, renderer)

			Expect(err).NotTo(HaveOccurred())
			Expect(transcript.Empty).To(BeTrue())
			Expect(transcript.Turns).To(BeEmpty())
		})

		It("stays empty even while awaiting", func() {
			transcript, err := chat.Present([]chat.Turn{}, true, renderer)

			Expect(err).NotTo(HaveOccurred())
			Expect(transcript.Empty).To(BeTrue())
		})
	})

	Context("with a completed turn", func() {
		It("renders the user utterance and both responses", func() {
			turns := chat.Reconstruct([]chat.Message{
				user("compare"),
				assistant("A", "alpha"),
				assistant("B", "beta"),
			})

			transcript, err := chat.Present(turns, false, renderer)
			Expect(err).NotTo(HaveOccurred())
			Expect(transcript.Empty).To(BeFalse())
			Expect(transcript.Turns).To(HaveLen(1))

			view := transcript.Turns[0]
			Expect(view.HasUser).To(BeTrue())
			Expect(view.User).To(Equal("compare"))
			Expect(view.ResponseA.State).To(Equal(chat.ResponseContent))
			Expect(view.ResponseA.Content).To(Equal("<alpha>"))
			Expect(view.ResponseB.State).To(Equal(chat.ResponseContent))
			Expect(view.ResponseB.Content).To(Equal("<beta>"))
		})
	})

	Context("while responses are pending", func() {
		It("shows typing placeholders in both empty columns of the last turn", func() {
			turns := chat.Reconstruct([]chat.Message{user("hi")})

			transcript, err := chat.Present(turns, true, renderer)
			Expect(err).NotTo(HaveOccurred())

			view := transcript.Turns[0]
			Expect(view.ResponseA.State).To(Equal(chat.ResponseTyping))
			Expect(view.ResponseB.State).To(Equal(chat.ResponseTyping))
		})

		It("shows a placeholder only in the slot that is still empty", func() {
			turns := chat.Reconstruct([]chat.Message{
				user("hi"),
				assistant("A", "done"),
			})

			transcript, err := chat.Present(turns, true, renderer)
			Expect(err).NotTo(HaveOccurred())

			view := transcript.Turns[0]
			Expect(view.ResponseA.State).To(Equal(chat.ResponseContent))
			Expect(view.ResponseB.State).To(Equal(chat.ResponseTyping))
		})

		It("never shows placeholders on earlier turns", func() {
			turns := chat.Reconstruct([]chat.Message{
				user("one"),
				user("two"),
			})

			transcript, err := chat.Present(turns, true, renderer)
			Expect(err).NotTo(HaveOccurred())
			Expect(transcript.Turns).To(HaveLen(2))

			Expect(transcript.Turns[0].ResponseA.State).To(Equal(chat.ResponseEmpty))
			Expect(transcript.Turns[0].ResponseB.State).To(Equal(chat.ResponseEmpty))
			Expect(transcript.Turns[1].ResponseA.State).To(Equal(chat.ResponseTyping))
			Expect(transcript.Turns[1].ResponseB.State).To(Equal(chat.ResponseTyping))
		})
	})

	Context("while nothing is pending", func() {
		It("leaves empty columns empty on the last turn", func() {
			turns := chat.Reconstruct([]chat.Message{user("hi")})

			transcript, err := chat.Present(turns, false, renderer)
			Expect(err).NotTo(HaveOccurred())

			view := transcript.Turns[0]
			Expect(view.ResponseA.State).To(Equal(chat.ResponseEmpty))
			Expect(view.ResponseB.State).To(Equal(chat.ResponseEmpty))
		})
	})

	Context("with an implicit leading turn", func() {
		It("renders no utterance block but both response columns", func() {
			turns := chat.Reconstruct([]chat.Message{assistant("A", "hello there")})

			transcript, err := chat.Present(turns, false, renderer)
			Expect(err).NotTo(HaveOccurred())

			view := transcript.Turns[0]
			Expect(view.HasUser).To(BeFalse())
			Expect(view.User).To(BeEmpty())
			Expect(view.ResponseA.State).To(Equal(chat.ResponseContent))
			Expect(view.ResponseA.Content).To(Equal("<hello there>"))
			Expect(view.ResponseB.State).To(Equal(chat.ResponseEmpty))
		})
	})

	Context("when the renderer fails", func() {
		It("propagates the error", func() {
			turns := chat.Reconstruct([]chat.Message{
				user("hi"),
				assistant("A", "boom"),
			})

			_, err := chat.Present(turns, false, failingRenderer{})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("renderer broke"))
		})
	})
})
