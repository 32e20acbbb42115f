//go:build !race

package auth

const productionHashCost = 12

func passwordHashCost() int {
	return productionHashCost
}
