package memory

import (
	"time"

	"github.com/sudo-init-do/studentmarket/internal/models"
)

// Dataset is a bundle of rows loaded into a store in one transaction.
type Dataset struct {
	Categories    []models.Category
	Users         []models.User
	Gigs          []models.Gig
	Bids          []models.Bid
	Orders        []models.Order
	Reviews       []models.Review
	Notifications []models.Notification
	Conversations []models.Conversation
	Messages      []models.Message
}

// DemoUserID is the user served as "current user" in fixture mode.
const DemoUserID = "user-1"

var fixtureEpoch = time.Date(2024, time.September, 1, 9, 0, 0, 0, time.UTC)

func at(hours int) time.Time { return fixtureEpoch.Add(time.Duration(hours) * time.Hour) }

// Fixtures returns a fresh copy of the deterministic sample data. The
// aggregates (ratings, reputation, earnings) agree with the orders and
// reviews in the set.
func Fixtures() Dataset {
	completedAt := at(120)
	return Dataset{
		Categories: []models.Category{
			{ID: "cat-academic", Name: "Academic Help", Color: "#2563eb", Icon: "book-open", Trending: true, GigCount: 450},
			{ID: "cat-tech", Name: "Tech & Programming", Color: "#7c3aed", Icon: "code", Trending: true, GigCount: 380},
			{ID: "cat-design", Name: "Design & Creative", Color: "#db2777", Icon: "palette", GigCount: 290},
			{ID: "cat-writing", Name: "Content & Writing", Color: "#059669", Icon: "pen-tool", GigCount: 220},
			{ID: "cat-business", Name: "Business & Marketing", Color: "#d97706", Icon: "trending-up", GigCount: 180},
			{ID: "cat-hobbies", Name: "Skills & Hobbies", Color: "#0891b2", Icon: "music", GigCount: 150},
		},
		Users: []models.User{
			{
				ID:              "user-1",
				Email:           "priya.sharma@coep.edu",
				FullName:        "Priya Sharma",
				College:         "COEP Pune",
				Major:           "Computer Engineering",
				Year:            "4th Year",
				City:            "Pune",
				Bio:             "Resume and portfolio designer. Helped 100+ juniors land internships.",
				Skills:          []string{"resume", "figma", "career coaching"},
				IsVerified:      true,
				ReputationScore: 1000,
				TotalEarnings:   299,
				WalletBalance:   1500,
				CreatedAt:       at(0),
				UpdatedAt:       at(120),
			},
			{
				ID:         "user-2",
				Email:      "arjun.patel@unipune.edu",
				FullName:   "Arjun Patel",
				College:    "Pune University",
				Major:      "Data Science",
				Year:       "3rd Year",
				City:       "Pune",
				Bio:        "Python mentor. Kaggle expert.",
				Skills:     []string{"python", "pandas", "machine learning"},
				IsVerified: true,
				CreatedAt:  at(1),
				UpdatedAt:  at(1),
			},
			{
				ID:        "user-3",
				Email:     "sneha.kulkarni@mitpune.edu",
				FullName:  "Sneha Kulkarni",
				College:   "MIT Pune",
				Major:     "Design",
				Year:      "2nd Year",
				City:      "Pune",
				Bio:       "UI/UX designer for early-stage startups.",
				Skills:    []string{"ui-ux", "prototyping", "illustration"},
				CreatedAt: at(2),
				UpdatedAt: at(2),
			},
			{
				ID:        "user-4",
				Email:     "rahul.deshmukh@symbiosis.edu",
				FullName:  "Rahul Deshmukh",
				College:   "Symbiosis Pune",
				Major:     "Journalism",
				Year:      "3rd Year",
				City:      "Pune",
				Bio:       "Technical writer and editor.",
				Skills:    []string{"technical writing", "editing"},
				CreatedAt: at(3),
				UpdatedAt: at(3),
			},
			{
				ID:            "user-5",
				Email:         "ananya.joshi@fergusson.edu",
				FullName:      "Ananya Joshi",
				College:       "Fergusson College",
				Major:         "Commerce",
				Year:          "1st Year",
				City:          "Pune",
				Bio:           "Always looking for study partners.",
				Skills:        []string{"excel"},
				WalletBalance: 2000,
				CreatedAt:     at(4),
				UpdatedAt:     at(4),
			},
		},
		Gigs: []models.Gig{
			{
				ID:                "gig-1",
				UserID:            "user-1",
				CategoryID:        "cat-business",
				GigType:           models.GigService,
				Title:             "Professional Resume Design + ATS Optimization",
				Description:       "Get noticed with a standout resume designed and checked against ATS filters.",
				Price:             299,
				DeliveryDays:      2,
				Rating:            5,
				TotalOrders:       1,
				Tags:              []string{"resume", "ats", "career"},
				SkillLevel:        models.SkillAdvanced,
				CollaborationType: models.CollabIndividual,
				IsActive:          true,
				CreatedAt:         at(10),
				UpdatedAt:         at(120),
			},
			{
				ID:                "gig-2",
				UserID:            "user-2",
				CategoryID:        "cat-tech",
				GigType:           models.GigService,
				Title:             "Python & Data Science Mentorship",
				Description:       "1-on-1 coding sessions covering Python, pandas and intro machine learning.",
				Price:             499,
				DeliveryDays:      7,
				Tags:              []string{"python", "data-science", "mentorship"},
				SkillLevel:        models.SkillIntermediate,
				CollaborationType: models.CollabIndividual,
				IsActive:          true,
				CreatedAt:         at(11),
				UpdatedAt:         at(11),
			},
			{
				ID:                "gig-3",
				UserID:            "user-3",
				CategoryID:        "cat-design",
				GigType:           models.GigService,
				Title:             "Modern UI/UX Design for Startups",
				Description:       "Complete app or web design with clickable prototypes.",
				Price:             899,
				DeliveryDays:      10,
				Tags:              []string{"ui-ux", "design", "prototype"},
				SkillLevel:        models.SkillAdvanced,
				CollaborationType: models.CollabTeam,
				IsActive:          true,
				CreatedAt:         at(12),
				UpdatedAt:         at(12),
			},
			{
				ID:                "gig-4",
				UserID:            "user-4",
				CategoryID:        "cat-writing",
				GigType:           models.GigService,
				Title:             "Technical Content Writing & Documentation",
				Description:       "Blogs, READMEs and project reports written and proofread.",
				Price:             399,
				DeliveryDays:      4,
				Tags:              []string{"writing", "technical", "documentation"},
				SkillLevel:        models.SkillIntermediate,
				CollaborationType: models.CollabIndividual,
				IsActive:          true,
				CreatedAt:         at(13),
				UpdatedAt:         at(13),
			},
			{
				ID:                "gig-5",
				UserID:            "user-5",
				CategoryID:        "cat-academic",
				GigType:           models.GigRequest,
				Title:             "Need help with DBMS mini project",
				Description:       "Looking for someone to help normalise my schema and write SQL queries.",
				Requirements:      "ER diagram and 10 queries with explanations",
				Price:             600,
				DeliveryDays:      5,
				Tags:              []string{"dbms", "sql"},
				SkillLevel:        models.SkillBeginner,
				CollaborationType: models.CollabIndividual,
				IsActive:          true,
				CreatedAt:         at(20),
				UpdatedAt:         at(20),
			},
			{
				ID:                "gig-6",
				UserID:            "user-1",
				CategoryID:        "cat-design",
				GigType:           models.GigRequest,
				Title:             "Logo for college tech fest",
				Description:       "Need a logo and social banner for our annual fest.",
				Price:             500,
				DeliveryDays:      6,
				Tags:              []string{"logo", "branding"},
				SkillLevel:        models.SkillBeginner,
				CollaborationType: models.CollabIndividual,
				IsActive:          true,
				CreatedAt:         at(21),
				UpdatedAt:         at(21),
			},
			{
				ID:                "gig-7",
				UserID:            "user-4",
				CategoryID:        "cat-hobbies",
				GigType:           models.GigService,
				Title:             "Guitar lessons for beginners",
				Description:       "Weekend guitar lessons. Currently paused.",
				Price:             250,
				DeliveryDays:      1,
				Tags:              []string{"music", "guitar"},
				SkillLevel:        models.SkillBeginner,
				CollaborationType: models.CollabIndividual,
				IsActive:          false,
				CreatedAt:         at(14),
				UpdatedAt:         at(30),
			},
		},
		Bids: []models.Bid{
			{
				ID:           "bid-1",
				GigID:        "gig-5",
				BidderID:     "user-2",
				Amount:       450,
				DeliveryDays: 4,
				Proposal:     "I have built three DBMS projects this year and can walk you through normalisation.",
				Status:       models.BidPending,
				CreatedAt:    at(22),
				UpdatedAt:    at(22),
			},
			{
				ID:           "bid-2",
				GigID:        "gig-5",
				BidderID:     "user-4",
				Amount:       800,
				DeliveryDays: 3,
				Proposal:     "Can deliver the full report with queries and a clean write-up.",
				Status:       models.BidPending,
				CreatedAt:    at(23),
				UpdatedAt:    at(23),
			},
			{
				ID:           "bid-3",
				GigID:        "gig-6",
				BidderID:     "user-3",
				Amount:       500,
				DeliveryDays: 5,
				Proposal:     "Three logo concepts plus two revisions.",
				Status:       models.BidPending,
				CreatedAt:    at(24),
				UpdatedAt:    at(24),
			},
		},
		Orders: []models.Order{
			{
				ID:            "order-1",
				GigID:         "gig-1",
				BuyerID:       "user-5",
				SellerID:      "user-1",
				Amount:        314,
				PlatformFee:   15,
				Requirements:  "Internship resume for finance roles",
				Status:        models.OrderCompleted,
				PaymentStatus: models.PaymentPaid,
				PaymentMethod: models.PayUPI,
				DeliveryDate:  at(96),
				CompletedAt:   &completedAt,
				CreatedAt:     at(48),
				UpdatedAt:     at(120),
			},
			{
				ID:            "order-2",
				GigID:         "gig-2",
				BuyerID:       "user-1",
				SellerID:      "user-2",
				Amount:        524,
				PlatformFee:   25,
				Requirements:  "Weekly sessions on pandas",
				Status:        models.OrderInProgress,
				PaymentStatus: models.PaymentPaid,
				PaymentMethod: models.PayCard,
				DeliveryDate:  at(50 + 7*24),
				CreatedAt:     at(50),
				UpdatedAt:     at(51),
			},
			{
				ID:            "order-3",
				GigID:         "gig-3",
				BuyerID:       "user-5",
				SellerID:      "user-3",
				Amount:        944,
				PlatformFee:   45,
				Requirements:  "Landing page for a college club",
				Status:        models.OrderPending,
				PaymentStatus: models.PaymentPending,
				DeliveryDate:  at(60 + 10*24),
				CreatedAt:     at(60),
				UpdatedAt:     at(60),
			},
		},
		Reviews: []models.Review{
			{
				ID:         "review-1",
				OrderID:    "order-1",
				GigID:      "gig-1",
				ReviewerID: "user-5",
				RevieweeID: "user-1",
				Rating:     5,
				Comment:    "Got two interview calls within a week!",
				CreatedAt:  at(121),
			},
		},
		Notifications: []models.Notification{
			{
				ID:        "notif-1",
				UserID:    "user-5",
				Type:      models.NotifyBidReceived,
				Title:     "New bid on your request",
				Body:      `Arjun Patel bid 450 on "Need help with DBMS mini project"`,
				Reference: "bid-1",
				CreatedAt: at(22),
			},
			{
				ID:        "notif-2",
				UserID:    "user-5",
				Type:      models.NotifyBidReceived,
				Title:     "New bid on your request",
				Body:      `Rahul Deshmukh bid 800 on "Need help with DBMS mini project"`,
				Reference: "bid-2",
				CreatedAt: at(23),
			},
			{
				ID:        "notif-3",
				UserID:    "user-1",
				Type:      models.NotifyBidReceived,
				Title:     "New bid on your request",
				Body:      `Sneha Kulkarni bid 500 on "Logo for college tech fest"`,
				Reference: "bid-3",
				CreatedAt: at(24),
			},
			{
				ID:        "notif-4",
				UserID:    "user-1",
				Type:      models.NotifyReviewReceived,
				Title:     "You received a review",
				Body:      `5 stars on "Professional Resume Design + ATS Optimization"`,
				Reference: "review-1",
				IsRead:    true,
				CreatedAt: at(121),
			},
		},
		Conversations: []models.Conversation{
			{
				ID:             "conv-1",
				ParticipantIDs: []string{"user-1", "user-2"},
				GigID:          "gig-2",
				LastMessage:    "Sure, Tuesday 6pm works.",
				CreatedAt:      at(52),
				UpdatedAt:      at(53),
			},
		},
		Messages: []models.Message{
			{
				ID:             "msg-1",
				ConversationID: "conv-1",
				SenderID:       "user-1",
				Content:        "Can we do the first session on Tuesday?",
				IsRead:         true,
				CreatedAt:      at(52),
			},
			{
				ID:             "msg-2",
				ConversationID: "conv-1",
				SenderID:       "user-2",
				Content:        "Sure, Tuesday 6pm works.",
				CreatedAt:      at(53),
			},
		},
	}
}
