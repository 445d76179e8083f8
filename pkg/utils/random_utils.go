package utils

import (
	"crypto/rand"
	"encoding/binary"
)

// 访客通行码的字符集，去掉了容易混淆的 0/O/1/I
const visitorCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// RandomInt32 生成一个安全的随机32位整数
func RandomInt32() int32 {
	var num int32
	err := binary.Read(rand.Reader, binary.BigEndian, &num)
	if err != nil {
		panic("generate random int32 failed")
	}

	return num
}

// RandomVisitorCode 生成指定长度的访客通行码，供门卫在闸口查询预约使用
func RandomVisitorCode(length int) string {
	if length <= 0 {
		length = 8
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic("generate visitor code failed")
	}

	for i := range buf {
		buf[i] = visitorCodeAlphabet[int(buf[i])%len(visitorCodeAlphabet)]
	}
	return string(buf)
}
