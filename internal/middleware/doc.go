// Package middleware 提供了 HTTP 請求處理的中間件。
//
// 這個包包含了各種中間件函數，用於在 HTTP 請求處理過程中執行額外的操作。
// 目前只有連接守門員：在任何房間操作被接受之前驗證身份憑證。
package middleware
