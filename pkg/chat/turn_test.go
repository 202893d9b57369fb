package chat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twakeham/pathfinder/pkg/chat"
)

func user(content string) chat.Message {
	return chat.Message{Role: chat.RoleUser, Content: content}
}

func assistant(variant chat.Variant, content string) chat.Message {
	return chat.Message{Role: chat.RoleAssistant, Variant: variant, Content: content}
}

var _ = Describe("Reconstruct", func() {
	Context("with an empty log", func() {
		It("yields zero turns", func() {
			Expect(chat.Reconstruct([]chat.Message{})).To(BeEmpty())
		})

		It("treats a nil log as empty", func() {
			Expect(chat.Reconstruct(nil)).To(BeEmpty())
		})
	})

	Context("with a single user message", func() {
		It("yields one turn with both response slots empty", func() {
			turns := chat.Reconstruct([]chat.Message{user("hi")})

			Expect(turns).To(HaveLen(1))
			Expect(turns[0].User).NotTo(BeNil())
			Expect(turns[0].User.Content).To(Equal("hi"))
			Expect(turns[0].ResponseA).To(BeNil())
			Expect(turns[0].ResponseB).To(BeNil())
		})
	})

	Context("with a complete turn", func() {
		It("attaches both variants to the user message", func() {
			turns := chat.Reconstruct([]chat.Message{
				user("compare these"),
				assistant("A", "first take"),
				assistant("B", "second take"),
			})

			Expect(turns).To(HaveLen(1))
			Expect(turns[0].ResponseA.Content).To(Equal("first take"))
			Expect(turns[0].ResponseB.Content).To(Equal("second take"))
		})
	})

	Context("with multiple turns", func() {
		It("starts a new turn on every user message", func() {
			turns := chat.Reconstruct([]chat.Message{
				user("one"),
				assistant("A", "re: one"),
				user("two"),
				assistant("B", "re: two"),
				user("three"),
			})

			Expect(turns).To(HaveLen(3))
			Expect(turns[0].User.Content).To(Equal("one"))
			Expect(turns[1].User.Content).To(Equal("two"))
			Expect(turns[2].User.Content).To(Equal("three"))
		})

		It("preserves input order of user messages across turns", func() {
			log := []chat.Message{}
			want := []string{"a", "b", "c", "d"}
			for _, c := range want {
				log = append(log, user(c), assistant("A", "re: "+c))
			}

			turns := chat.Reconstruct(log)
			Expect(turns).To(HaveLen(len(want)))
			for i, c := range want {
				Expect(turns[i].User.Content).To(Equal(c))
			}
		})

		It("leaves slots empty for consecutive user messages", func() {
			turns := chat.Reconstruct([]chat.Message{user("first"), user("second")})

			Expect(turns).To(HaveLen(2))
			Expect(turns[0].ResponseA).To(BeNil())
			Expect(turns[0].ResponseB).To(BeNil())
			Expect(turns[1].User.Content).To(Equal("second"))
		})
	})

	Context("when assistant output precedes any user input", func() {
		It("collects it into an implicit leading turn", func() {
			turns := chat.Reconstruct([]chat.Message{assistant("A", "hi")})

			Expect(turns).To(HaveLen(1))
			Expect(turns[0].User).To(BeNil())
			Expect(turns[0].ResponseA.Content).To(Equal("hi"))
		})

		It("keeps the implicit turn separate from the first real turn", func() {
			turns := chat.Reconstruct([]chat.Message{
				assistant("A", "greeting"),
				assistant("B", "other greeting"),
				user("question"),
				assistant("A", "answer"),
			})

			Expect(turns).To(HaveLen(2))
			Expect(turns[0].User).To(BeNil())
			Expect(turns[0].ResponseA.Content).To(Equal("greeting"))
			Expect(turns[0].ResponseB.Content).To(Equal("other greeting"))
			Expect(turns[1].User.Content).To(Equal("question"))
			Expect(turns[1].ResponseA.Content).To(Equal("answer"))
		})
	})

	Context("when a variant repeats within one turn", func() {
		It("keeps only the last message per slot", func() {
			turns := chat.Reconstruct([]chat.Message{
				user("hi"),
				assistant("A", "x"),
				assistant("A", "y"),
			})

			Expect(turns).To(HaveLen(1))
			Expect(turns[0].ResponseA.Content).To(Equal("y"))
			Expect(turns[0].ResponseB).To(BeNil())
		})
	})

	Context("variant normalization", func() {
		It("matches B case-insensitively", func() {
			turns := chat.Reconstruct([]chat.Message{user("hi"), assistant("b", "lower")})

			Expect(turns[0].ResponseB).NotTo(BeNil())
			Expect(turns[0].ResponseB.Content).To(Equal("lower"))
		})

		It("treats unrecognized labels as A", func() {
			turns := chat.Reconstruct([]chat.Message{user("hi"), assistant("unknown", "odd")})

			Expect(turns[0].ResponseA).NotTo(BeNil())
			Expect(turns[0].ResponseA.Content).To(Equal("odd"))
			Expect(turns[0].ResponseB).To(BeNil())
		})

		It("treats a missing label as A", func() {
			turns := chat.Reconstruct([]chat.Message{user("hi"), assistant("", "blank")})

			Expect(turns[0].ResponseA).NotTo(BeNil())
			Expect(turns[0].ResponseB).To(BeNil())
		})
	})

	Context("with unknown roles", func() {
		It("ignores them without opening or closing turns", func() {
			turns := chat.Reconstruct([]chat.Message{
				{Role: "system", Content: "be helpful"},
				user("hi"),
				{Role: "tool", Content: "result"},
				assistant("A", "answer"),
			})

			Expect(turns).To(HaveLen(1))
			Expect(turns[0].User.Content).To(Equal("hi"))
			Expect(turns[0].ResponseA.Content).To(Equal("answer"))
		})
	})

	Context("turn count", func() {
		It("equals user count plus one for a leading assistant run", func() {
			turns := chat.Reconstruct([]chat.Message{
				assistant("A", "lead"),
				user("one"),
				user("two"),
				assistant("B", "re: two"),
				user("three"),
			})

			Expect(turns).To(HaveLen(4))
		})
	})

	Context("idempotence", func() {
		It("produces identical output on repeated runs over the same log", func() {
			log := []chat.Message{
				assistant("b", "lead"),
				user("one"),
				assistant("A", "x"),
				assistant("A", "y"),
				user("two"),
			}

			first := chat.Reconstruct(log)
			second := chat.Reconstruct(log)

			Expect(second).To(Equal(first))
		})

		It("does not mutate the input log", func() {
			log := []chat.Message{user("hi"), assistant("A", "yo")}
			chat.Reconstruct(log)

			Expect(log[0].Content).To(Equal("hi"))
			Expect(log[1].Variant).To(Equal(chat.Variant("A")))
		})
	})
})

var _ = Describe("NormalizeVariant", func() {
	It("maps b and B to B", func() {
		Expect(chat.NormalizeVariant("b")).To(Equal(chat.VariantB))
		Expect(chat.NormalizeVariant("B")).To(Equal(chat.VariantB))
	})

	It("maps everything else to A", func() {
		Expect(chat.NormalizeVariant("")).To(Equal(chat.VariantA))
		Expect(chat.NormalizeVariant("a")).To(Equal(chat.VariantA))
		Expect(chat.NormalizeVariant("unknown")).To(Equal(chat.VariantA))
		Expect(chat.NormalizeVariant("bb")).To(Equal(chat.VariantA))
	})
})
