package client

import "github.com/novaacademy/aula-virtual/internal/domain"

// The client speaks the same wire types as the server.
type (
	User          = domain.User
	UserInput     = domain.UserInput
	Category      = domain.Category
	CategoryInput = domain.CategoryInput
	Course        = domain.Course
	CourseInput   = domain.CourseInput
	CourseDetails = domain.CourseDetails
	Live          = domain.Live
	LiveInput     = domain.LiveInput
	Purchase      = domain.Purchase
	PurchaseInput = domain.PurchaseInput
	Payment       = domain.Payment
)
