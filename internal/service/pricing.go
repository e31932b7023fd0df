// Package service implements the business logic for the application.
package service

// Coin prices for every paid action. Fixed at compile time; moderation
// endpoints bypass the coin economy entirely.
const (
	CostSendMessage   int64 = 10
	CostRevealSender  int64 = 30
	CostReply         int64 = 20
	CostAddFriend     int64 = 50
	CostFriendMessage int64 = 20
)
