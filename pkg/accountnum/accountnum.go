package accountnum

import (
	"fmt"
	"math/rand"
	"time"
)

// 帳號前綴：銀行代碼 + 分行代碼
const (
	bankCode   = "1000"
	branchCode = "11"
)

// Generate 產生一組新帳號
// 格式: 銀行代碼(4) + 分行代碼(2) + 西元年末兩碼(2) + 隨機數(8)
// 唯一性由呼叫端在開戶時驗證，碰撞就重新產生
func Generate() string {
	yearCode := fmt.Sprintf("%02d", time.Now().Year()%100)
	uniqueNumber := fmt.Sprintf("%08d", rand.Intn(100_000_000))
	return bankCode + branchCode + yearCode + uniqueNumber
}
