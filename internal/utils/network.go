package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetRealIP extracts the client IP address from the request.
//
// Priority order:
//  1. X-Real-IP header (set by reverse proxies like Nginx)
//  2. the first valid entry of X-Forwarded-For
//  3. gin's ClientIP() for direct connections
func GetRealIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); isValidIP(realIP) {
		return realIP
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		for _, part := range strings.Split(forwarded, ",") {
			if ip := strings.TrimSpace(part); isValidIP(ip) {
				return ip
			}
		}
	}

	return c.ClientIP()
}

// GetUserAgent extracts the User-Agent header from the request
func GetUserAgent(c *gin.Context) string {
	userAgent := c.Request.UserAgent()
	if userAgent == "" {
		return "Unknown"
	}
	return userAgent
}

func isValidIP(ip string) bool {
	return ip != "" && net.ParseIP(ip) != nil
}
