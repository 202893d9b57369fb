package store_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/store"
)

// Both drivers must satisfy the same contract, so the behaviors run once
// per constructor.
var _ = Describe("Store", func() {
	drivers := map[string]func() store.Store{
		"Memory": func() store.Store { return store.NewMemory() },
		"SQLite": func() store.Store {
			s, err := store.NewSQLite(":memory:")
			Expect(err).NotTo(HaveOccurred())
			return s
		},
	}

	for name, open := range drivers {
		Context("with the "+name+" driver", func() {
			var (
				s   store.Store
				ctx context.Context
			)

			BeforeEach(func() {
				ctx = context.Background()
				s = open()
			})

			AfterEach(func() {
				Expect(s.Close()).To(Succeed())
			})

			Describe("conversations", func() {
				It("creates a conversation with ID and timestamps", func() {
					convo, err := s.CreateConversation(ctx, "test chat")

					Expect(err).NotTo(HaveOccurred())
					Expect(convo.ID).NotTo(BeEmpty())
					Expect(convo.Title).To(Equal("test chat"))
					Expect(convo.CreatedAt).NotTo(BeZero())
					Expect(convo.UpdatedAt).To(Equal(convo.CreatedAt))
				})

				It("allows an empty title", func() {
					convo, err := s.CreateConversation(ctx, "")

					Expect(err).NotTo(HaveOccurred())
					Expect(convo.Title).To(BeEmpty())
				})

				It("gets a conversation back by ID", func() {
					created, err := s.CreateConversation(ctx, "find me")
					Expect(err).NotTo(HaveOccurred())

					got, err := s.GetConversation(ctx, created.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(got.ID).To(Equal(created.ID))
					Expect(got.Title).To(Equal("find me"))
				})

				It("returns ErrNotFound for an unknown ID", func() {
					_, err := s.GetConversation(ctx, "nope")

					Expect(err).To(BeAssignableToTypeOf(store.ErrNotFound{}))
				})

				It("lists conversations", func() {
					_, err := s.CreateConversation(ctx, "one")
					Expect(err).NotTo(HaveOccurred())
					_, err = s.CreateConversation(ctx, "two")
					Expect(err).NotTo(HaveOccurred())

					convos, err := s.ListConversations(ctx)
					Expect(err).NotTo(HaveOccurred())
					Expect(convos).To(HaveLen(2))
				})
			})

			Describe("messages", func() {
				var convo *store.Conversation

				BeforeEach(func() {
					var err error
					convo, err = s.CreateConversation(ctx, "log")
					Expect(err).NotTo(HaveOccurred())
				})

				It("appends and fills in ID and CreatedAt", func() {
					msg := &store.Message{
						ConversationID: convo.ID,
						Role:           chat.RoleUser,
						Content:        "hi",
					}

					Expect(s.AppendMessage(ctx, msg)).To(Succeed())
					Expect(msg.ID).NotTo(BeEmpty())
					Expect(msg.CreatedAt).NotTo(BeZero())
				})

				It("lists messages in insertion order", func() {
					for _, content := range []string{"one", "two", "three"} {
						Expect(s.AppendMessage(ctx, &store.Message{
							ConversationID: convo.ID,
							Role:           chat.RoleUser,
							Content:        content,
						})).To(Succeed())
					}

					msgs, err := s.ListMessages(ctx, convo.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(msgs).To(HaveLen(3))
					Expect(msgs[0].Content).To(Equal("one"))
					Expect(msgs[1].Content).To(Equal("two"))
					Expect(msgs[2].Content).To(Equal("three"))
				})

				It("keeps role, variant, model and token counts", func() {
					Expect(s.AppendMessage(ctx, &store.Message{
						ConversationID:   convo.ID,
						Role:             chat.RoleAssistant,
						Variant:          chat.VariantB,
						Content:          "answer",
						Model:            "test-model",
						PromptTokens:     12,
						CompletionTokens: 34,
					})).To(Succeed())

					msgs, err := s.ListMessages(ctx, convo.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(msgs).To(HaveLen(1))
					Expect(msgs[0].Role).To(Equal(chat.RoleAssistant))
					Expect(msgs[0].Variant).To(Equal(chat.VariantB))
					Expect(msgs[0].Model).To(Equal("test-model"))
					Expect(msgs[0].PromptTokens).To(Equal(12))
					Expect(msgs[0].CompletionTokens).To(Equal(34))
				})

				It("bumps the conversation's UpdatedAt", func() {
					Expect(s.AppendMessage(ctx, &store.Message{
						ConversationID: convo.ID,
						Role:           chat.RoleUser,
						Content:        "ping",
					})).To(Succeed())

					got, err := s.GetConversation(ctx, convo.ID)
					Expect(err).NotTo(HaveOccurred())
					Expect(got.UpdatedAt.Before(convo.UpdatedAt)).To(BeFalse())
				})

				It("rejects appends to unknown conversations", func() {
					err := s.AppendMessage(ctx, &store.Message{
						ConversationID: "ghost",
						Role:           chat.RoleUser,
						Content:        "hello?",
					})

					Expect(err).To(BeAssignableToTypeOf(store.ErrNotFound{}))
				})

				It("rejects listing an unknown conversation", func() {
					_, err := s.ListMessages(ctx, "ghost")

					Expect(err).To(BeAssignableToTypeOf(store.ErrNotFound{}))
				})

				It("round-trips into a chat log the reconstructor accepts", func() {
					entries := []store.Message{
						{Role: chat.RoleUser, Content: "compare"},
						{Role: chat.RoleAssistant, Variant: chat.VariantA, Content: "left"},
						{Role: chat.RoleAssistant, Variant: chat.VariantB, Content: "right"},
					}
					for i := range entries {
						entries[i].ConversationID = convo.ID
						Expect(s.AppendMessage(ctx, &entries[i])).To(Succeed())
					}

					msgs, err := s.ListMessages(ctx, convo.ID)
					Expect(err).NotTo(HaveOccurred())

					turns := chat.Reconstruct(store.Log(msgs))
					Expect(turns).To(HaveLen(1))
					Expect(turns[0].User.Content).To(Equal("compare"))
					Expect(turns[0].ResponseA.Content).To(Equal("left"))
					Expect(turns[0].ResponseB.Content).To(Equal("right"))
				})
			})
		})
	}
})

var _ = Describe("Recorder", func() {
	var (
		s   store.Store
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		s = store.NewMemory()
	})

	It("creates the conversation it records into", func() {
		rec, err := store.NewRecorder(ctx, s, "session")
		Expect(err).NotTo(HaveOccurred())

		convo, err := s.GetConversation(ctx, rec.ConversationID())
		Expect(err).NotTo(HaveOccurred())
		Expect(convo.Title).To(Equal("session"))
	})

	It("appends a session log the reconstructor accepts", func() {
		rec, err := store.NewRecorder(ctx, s, "session")
		Expect(err).NotTo(HaveOccurred())

		Expect(rec.Record(ctx, &store.Message{Role: chat.RoleUser, Content: "compare"})).To(Succeed())
		Expect(rec.Record(ctx, &store.Message{Role: chat.RoleAssistant, Variant: chat.VariantA, Content: "left"})).To(Succeed())
		Expect(rec.Record(ctx, &store.Message{Role: chat.RoleAssistant, Variant: chat.VariantB, Content: "right"})).To(Succeed())

		msgs, err := s.ListMessages(ctx, rec.ConversationID())
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(3))

		turns := chat.Reconstruct(store.Log(msgs))
		Expect(turns).To(HaveLen(1))
		Expect(turns[0].User.Content).To(Equal("compare"))
		Expect(turns[0].ResponseA.Content).To(Equal("left"))
		Expect(turns[0].ResponseB.Content).To(Equal("right"))
	})
})

var _ = Describe("NewSQLite", func() {
	It("creates the database file on disk", func() {
		tmpDir := GinkgoT().TempDir()
		dbPath := filepath.Join(tmpDir, "pathfinder.db")

		s, err := store.NewSQLite(dbPath)
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		_, err = os.Stat(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})
})
